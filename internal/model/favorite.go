package model

type Favorite struct {
	BaseModel
	UserID  uint64 `gorm:"not null;uniqueIndex:idx_favorite_user_video"`
	VideoID uint64 `gorm:"not null;uniqueIndex:idx_favorite_user_video;index"`

	Video Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
}

func (Favorite) TableName() string {
	return "favorites"
}

package model

// 三个计数器是冗余字段，只能通过原子的相对更新(like_count + 1)修改，必须与likes/comments表中的行数一致
type Video struct {
	BaseModel
	AuthorID     uint64 `gorm:"not null;index"` // 创建后不会再变
	Title        string `gorm:"type:varchar(255);not null"`
	Description  string `gorm:"type:text"`
	VideoKey     string `gorm:"type:varchar(255);not null"`
	ThumbnailKey string `gorm:"type:varchar(255)"`
	ViewCount    uint64 `gorm:"not null;default:0"`
	LikeCount    uint64 `gorm:"not null;default:0"`
	CommentCount uint64 `gorm:"not null;default:0"`

	Author User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

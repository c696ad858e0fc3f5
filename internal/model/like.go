package model

// 联合唯一索引保证一个用户对一个视频最多一条点赞，查重交给数据库
type Like struct {
	BaseModel
	UserID  uint64 `gorm:"not null;uniqueIndex:idx_like_user_video"`
	VideoID uint64 `gorm:"not null;uniqueIndex:idx_like_user_video;index"`
}

func (Like) TableName() string {
	return "likes"
}

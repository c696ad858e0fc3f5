package model

type User struct {
	BaseModel
	Username string `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email    string `gorm:"type:varchar(254);uniqueIndex;not null"`
	Password string `gorm:"not null" json:"-"`
	Bio      string `gorm:"type:text"`
	// 头像在对象存储中的key，不是完整URL
	ProfilePicture string `gorm:"type:varchar(255)"`
}

// UserStats 是用户的派生计数，不落库，每次从关系表统计
type UserStats struct {
	FollowerCount  int64
	FollowingCount int64
	VideoCount     int64
	HeartCount     int64 // 名下所有视频收到的点赞总数
}

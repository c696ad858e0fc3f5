package model

// 有向边：FollowerID 关注了 FollowingID
type Follower struct {
	BaseModel
	FollowerID  uint64 `gorm:"not null;uniqueIndex:idx_follower_following"`
	FollowingID uint64 `gorm:"not null;uniqueIndex:idx_follower_following;index"`
}

func (Follower) TableName() string {
	return "followers"
}

package model

import (
	"time"
)

// gorm自带的Model里ID是uint，这里统一成uint64
// 不带DeletedAt：点赞/收藏/关注的联合唯一索引要求真删除，软删除的行会一直占着唯一键
type BaseModel struct {
	ID        uint64 `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

package model

// All 返回需要迁移的全部模型，server、seeder和测试共用
func All() []interface{} {
	return []interface{}{
		&User{}, &Video{}, &Like{}, &Favorite{}, &Follower{}, &Comment{}, &Notification{},
	}
}

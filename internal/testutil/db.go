// Package testutil 提供测试用的内存数据库和造数据的小工具
package testutil

import (
	"Orion_Shorts/internal/model"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 返回一个迁移好的内存SQLite
// 内存库是按连接隔离的，所以只允许一个连接，事务内必须使用tx
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// CreateUser 插入一个用户，密码字段不是真实的哈希
func CreateUser(t testing.TB, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "not-a-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateVideo 插入一个视频，createdAt为零值时使用当前时间
func CreateVideo(t testing.TB, db *gorm.DB, authorID uint64, title string, createdAt time.Time) *model.Video {
	t.Helper()
	video := &model.Video{
		AuthorID: authorID,
		Title:    title,
		VideoKey: "videos/" + title + ".mp4",
	}
	if !createdAt.IsZero() {
		video.CreatedAt = createdAt.UTC()
	}
	require.NoError(t, db.Create(video).Error)
	return video
}

// Follow 直接插入一条关注边
func Follow(t *testing.T, db *gorm.DB, followerID, followingID uint64) {
	t.Helper()
	require.NoError(t, db.Create(&model.Follower{FollowerID: followerID, FollowingID: followingID}).Error)
}

// ReloadVideo 从数据库重新读出视频的计数器
func ReloadVideo(t *testing.T, db *gorm.DB, videoID uint64) *model.Video {
	t.Helper()
	var video model.Video
	require.NoError(t, db.First(&video, videoID).Error)
	return &video
}

// Count 统计某个模型满足条件的行数
func Count(t *testing.T, db *gorm.DB, value interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(value)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// cmd/seeder/main.go

package main

import (
	"Orion_Shorts/internal/model"
	"Orion_Shorts/pkg/config"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/go-faker/faker/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	userCount    = 100
	videoCount   = 500
	followCount  = 800
	likeCount    = 1000
	commentCount = 1500
)

func main() {
	fmt.Println("🚀 开始填充测试数据...")

	// --- 1. 连接数据库 ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ 无法连接到数据库: %v", err)
	}
	fmt.Println("✅ 数据库连接成功!")

	// --- 2. 清理旧数据 ---
	// 注意：这将删除所有数据！
	fmt.Println("🧹 正在清理旧数据...")
	tables := model.All()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			log.Fatalf("❌ 删除旧表失败: %v", err)
		}
	}
	if err := db.AutoMigrate(tables...); err != nil {
		log.Fatalf("❌ 数据库迁移失败: %v", err)
	}
	fmt.Println("✅ 数据库迁移成功!")

	// --- 3. 创建用户 ---
	// 所有用户的密码都是 "password"，只哈希一次
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ 密码加密失败: %v", err)
	}
	userIDs := make([]uint64, 0, userCount)
	for i := 0; i < userCount; i++ {
		// 加序号保证唯一，用户名统一小写
		user := model.User{
			Username: fmt.Sprintf("%s%d", strings.ToLower(faker.Username()), i),
			Email:    fmt.Sprintf("user%d.%s", i, strings.ToLower(faker.Email())),
			Password: string(hashedPassword),
			Bio:      faker.Sentence(),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("❌ 创建用户失败: %v", err)
		}
		userIDs = append(userIDs, user.ID)
	}
	fmt.Printf("✅ 成功创建 %d 个用户!\n", userCount)

	// --- 4. 创建视频 ---
	videoIDs := make([]uint64, 0, videoCount)
	for i := 0; i < videoCount; i++ {
		video := model.Video{
			AuthorID:     pick(userIDs),
			Title:        faker.Sentence(),
			Description:  faker.Paragraph(),
			VideoKey:     fmt.Sprintf("videos/seed-%d.mp4", i),
			ThumbnailKey: fmt.Sprintf("thumbnails/seed-%d.jpg", i),
			ViewCount:    uint64(rand.Intn(1000)),
		}
		if err := db.Create(&video).Error; err != nil {
			log.Fatalf("❌ 创建视频失败: %v", err)
		}
		videoIDs = append(videoIDs, video.ID)
	}
	fmt.Printf("✅ 成功创建 %d 个视频!\n", videoCount)

	// --- 5. 随机关注、点赞、评论 ---
	// OnConflict 让重复的关注/点赞直接跳过
	for i := 0; i < followCount; i++ {
		follower, following := pick(userIDs), pick(userIDs)
		if follower == following {
			continue
		}
		db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Follower{FollowerID: follower, FollowingID: following})
	}
	for i := 0; i < likeCount; i++ {
		db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Like{UserID: pick(userIDs), VideoID: pick(videoIDs)})
	}
	for i := 0; i < commentCount; i++ {
		db.Create(&model.Comment{UserID: pick(userIDs), VideoID: pick(videoIDs), Text: faker.Sentence()})
	}
	fmt.Println("✅ 关注、点赞、评论创建完毕!")

	// --- 6. 按关系表重算冗余计数器 ---
	err = db.Exec(`UPDATE videos SET
		like_count = (SELECT COUNT(*) FROM likes WHERE likes.video_id = videos.id),
		comment_count = (SELECT COUNT(*) FROM comments WHERE comments.video_id = videos.id)`).Error
	if err != nil {
		log.Fatalf("❌ 重算计数器失败: %v", err)
	}
	fmt.Println("✅ 计数器已与关系表同步!")

	fmt.Println("🎉🎉🎉 所有测试数据填充完毕! 🎉🎉🎉")
}

func pick(ids []uint64) uint64 {
	return ids[rand.Intn(len(ids))]
}

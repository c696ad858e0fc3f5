package data

import (
	"Orion_Shorts/internal/repository"
	"context"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Repositories 持有所有仓库；事务里拿到的是绑定了同一个tx的副本
type Repositories struct {
	UserRepo         repository.UserRepository
	VideoRepo        repository.VideoRepository
	LikeRepo         repository.LikeRepository
	FavoriteRepo     repository.FavoriteRepository
	FollowRepo       repository.FollowRepository
	CommentRepo      repository.CommentRepository
	NotificationRepo repository.NotificationRepository
}

// NewRepositories 创建非事务的仓库集合，rdb可以为nil（不使用视频缓存）
func NewRepositories(db *gorm.DB, rdb *redis.Client) *Repositories {
	return &Repositories{
		UserRepo:         repository.NewUserRepository(db),
		VideoRepo:        repository.NewVideoRepository(db, rdb),
		LikeRepo:         repository.NewLikeRepository(db),
		FavoriteRepo:     repository.NewFavoriteRepository(db),
		FollowRepo:       repository.NewFollowRepository(db),
		CommentRepo:      repository.NewCommentRepository(db),
		NotificationRepo: repository.NewNotificationRepository(db),
	}
}

// WithTx 临时创建“一次性”的、绑定了特定事务的Repo副本
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return &Repositories{
		UserRepo:         r.UserRepo.WithTx(tx),
		VideoRepo:        r.VideoRepo.WithTx(tx),
		LikeRepo:         r.LikeRepo.WithTx(tx),
		FavoriteRepo:     r.FavoriteRepo.WithTx(tx),
		FollowRepo:       r.FollowRepo.WithTx(tx),
		CommentRepo:      r.CommentRepo.WithTx(tx),
		NotificationRepo: r.NotificationRepo.WithTx(tx),
	}
}

// UnitOfWork 定义了我们事务管理器的接口
type UnitOfWork interface {
	// Execute 将一个函数包裹在数据库事务中执行，fn返回error则整个事务回滚
	Execute(ctx context.Context, fn func(repos *Repositories) error) error
}

// db是事务的入口和管理者
type gormUnitOfWork struct {
	db    *gorm.DB
	repos *Repositories
}

// NewUnitOfWork 创建一个新的、基于GORM的“工作单元”。
// 注意，它接收的是原始的、非事务的 repositories。
func NewUnitOfWork(db *gorm.DB, repos *Repositories) UnitOfWork {
	return &gormUnitOfWork{
		db:    db,
		repos: repos,
	}
}

func (u *gormUnitOfWork) Execute(ctx context.Context, fn func(repos *Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(u.repos.WithTx(tx))
	})
}

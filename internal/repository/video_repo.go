package repository

import (
	"Orion_Shorts/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 热度分：播放 + 点赞 + 评论
const trendingScore = "(view_count + like_count + comment_count)"

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	FindByID(ctx context.Context, videoID uint64) (*model.Video, error)
	// 删除视频，以及引用它的通知、点赞、收藏和评论
	DeleteCascade(ctx context.Context, videoID uint64) error

	FindLatest(ctx context.Context, offset, limit int) ([]model.Video, int64, error)
	FindTrending(ctx context.Context, offset, limit int) ([]model.Video, int64, error)
	FindByAuthor(ctx context.Context, authorID uint64, offset, limit int) ([]model.Video, int64, error)
	// userID关注的所有作者发布的视频
	FindFollowingFeed(ctx context.Context, userID uint64, offset, limit int) ([]model.Video, int64, error)

	// 计数器只做原子的相对更新，不做“读-改-写”
	IncrementLikeCount(ctx context.Context, videoID uint64) error
	DecrementLikeCount(ctx context.Context, videoID uint64) error
	IncrementCommentCount(ctx context.Context, videoID uint64) error
	DecrementCommentCount(ctx context.Context, videoID uint64) error
	IncrementViewCount(ctx context.Context, videoID uint64) (bool, error)

	// 缓存，rdb为nil（事务中）时都是空操作
	GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error)
	SetVideoCache(ctx context.Context, video *model.Video) error
	DeleteVideoCache(ctx context.Context, videoID uint64) error

	WithTx(tx *gorm.DB) VideoRepository
}

type videoRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewVideoRepository(db *gorm.DB, rdb *redis.Client) VideoRepository {
	return &videoRepository{
		db:  db,
		rdb: rdb,
	}
}

// WithTx 返回绑定事务的实例，事务中不操作Redis
func (r *videoRepository) WithTx(tx *gorm.DB) VideoRepository {
	return &videoRepository{
		db: tx,
	}
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// 利用videoID找视频，preload其中的Author结构
func (r *videoRepository) FindByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	var video model.Video
	if err := r.db.WithContext(ctx).Preload("Author").First(&video, videoID).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) DeleteCascade(ctx context.Context, videoID uint64) error {
	db := r.db.WithContext(ctx)
	// 先删引用方再删视频，不依赖数据库的外键级联
	for _, table := range []string{"notifications", "likes", "favorites", "comments"} {
		if err := db.Exec("DELETE FROM "+table+" WHERE video_id = ?", videoID).Error; err != nil {
			return err
		}
	}
	return db.Exec("DELETE FROM videos WHERE id = ?", videoID).Error
}

// 全部视频，最新发布的在前
func (r *videoRepository) FindLatest(ctx context.Context, offset, limit int) ([]model.Video, int64, error) {
	return r.findPage(r.db.WithContext(ctx).Model(&model.Video{}), offset, limit, "created_at DESC", "id DESC")
}

func (r *videoRepository) FindTrending(ctx context.Context, offset, limit int) ([]model.Video, int64, error) {
	return r.findPage(r.db.WithContext(ctx).Model(&model.Video{}), offset, limit,
		trendingScore+" DESC", "created_at DESC", "id DESC")
}

func (r *videoRepository) FindByAuthor(ctx context.Context, authorID uint64, offset, limit int) ([]model.Video, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Video{}).Where("author_id = ?", authorID)
	return r.findPage(query, offset, limit, "created_at DESC", "id DESC")
}

func (r *videoRepository) FindFollowingFeed(ctx context.Context, userID uint64, offset, limit int) ([]model.Video, int64, error) {
	db := r.db.WithContext(ctx)
	followed := db.Model(&model.Follower{}).Select("following_id").Where("follower_id = ?", userID)
	query := db.Model(&model.Video{}).Where("author_id IN (?)", followed)
	return r.findPage(query, offset, limit, "created_at DESC", "id DESC")
}

// findPage 先数总数，再按给定顺序取一页，并预加载作者
func (r *videoRepository) findPage(query *gorm.DB, offset, limit int, orders ...string) ([]model.Video, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := query.Session(&gorm.Session{}).Preload("Author")
	for _, order := range orders {
		page = page.Order(order)
	}
	var videos []model.Video
	if err := page.Offset(offset).Limit(limit).Find(&videos).Error; err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (r *videoRepository) IncrementLikeCount(ctx context.Context, videoID uint64) error {
	// UPDATE `videos` SET `like_count` = `like_count` + 1 WHERE id = ?
	return r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", videoID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
}

func (r *videoRepository) DecrementLikeCount(ctx context.Context, videoID uint64) error {
	// like_count > 0 防止无符号下溢
	return r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ? AND like_count > 0", videoID).
		UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
}

func (r *videoRepository) IncrementCommentCount(ctx context.Context, videoID uint64) error {
	return r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", videoID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
}

func (r *videoRepository) DecrementCommentCount(ctx context.Context, videoID uint64) error {
	return r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ? AND comment_count > 0", videoID).
		UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error
}

// IncrementViewCount 返回视频是否存在（是否更新到了行）
func (r *videoRepository) IncrementViewCount(ctx context.Context, videoID uint64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", videoID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	return result.RowsAffected > 0, result.Error
}

// 返回存储单个视频信息的字符串Key
func (r *videoRepository) keyVideoInfo(videoID uint64) string {
	return fmt.Sprintf("video:info:%d", videoID)
}

// 从Redis缓存中获取单个Video信息，未命中时返回 nil, nil
func (r *videoRepository) GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error) {
	if r.rdb == nil {
		return nil, nil
	}
	videoJSON, err := r.rdb.Get(ctx, r.keyVideoInfo(videoID)).Result()
	if err == redis.Nil {
		return nil, nil // 缓存不存在，但Redis正常工作
	} else if err != nil {
		return nil, err // Redis本身出错了
	}
	var video model.Video
	if err := json.Unmarshal([]byte(videoJSON), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// 将单个视频信息存入Redis缓存，过期时间加随机抖动防止缓存雪崩
func (r *videoRepository) SetVideoCache(ctx context.Context, video *model.Video) error {
	if r.rdb == nil {
		return nil
	}
	videoJSON, err := json.Marshal(video)
	if err != nil {
		return err
	}
	expiration := time.Minute*5 + time.Duration(rand.Intn(60))*time.Second
	return r.rdb.Set(ctx, r.keyVideoInfo(video.ID), videoJSON, expiration).Err()
}

// 计数器变化或视频删除后调用，下次读取时回源数据库
func (r *videoRepository) DeleteVideoCache(ctx context.Context, videoID uint64) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, r.keyVideoInfo(videoID)).Err()
}

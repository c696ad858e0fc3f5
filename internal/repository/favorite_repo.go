package repository

import (
	"Orion_Shorts/internal/model"
	"context"

	"gorm.io/gorm"
)

type FavoriteRepository interface {
	CreateIfAbsent(ctx context.Context, userID, videoID uint64) (bool, error)
	Delete(ctx context.Context, userID, videoID uint64) (bool, error)
	Exists(ctx context.Context, userID, videoID uint64) (bool, error)
	// 用户收藏的视频，按收藏时间倒序
	ListByUser(ctx context.Context, userID uint64) ([]model.Favorite, error)

	WithTx(tx *gorm.DB) FavoriteRepository
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) WithTx(tx *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: tx}
}

func (r *favoriteRepository) CreateIfAbsent(ctx context.Context, userID, videoID uint64) (bool, error) {
	favorite := &model.Favorite{UserID: userID, VideoID: videoID}
	return createIfAbsent(r.db.WithContext(ctx), favorite, "user_id", "video_id")
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, videoID uint64) (bool, error) {
	result := r.db.WithContext(ctx).Exec("DELETE FROM favorites WHERE user_id = ? AND video_id = ?", userID, videoID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, videoID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := r.db.WithContext(ctx).
		Preload("Video").
		Preload("Video.Author").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&favorites).Error
	return favorites, err
}

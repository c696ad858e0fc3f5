package repository

import (
	"Orion_Shorts/internal/model"
	"context"

	"gorm.io/gorm"
)

type LikeRepository interface {
	// CreateIfAbsent 不存在才插入，返回是否插入
	CreateIfAbsent(ctx context.Context, userID, videoID uint64) (bool, error)
	// Delete 返回是否真的删掉了一行
	Delete(ctx context.Context, userID, videoID uint64) (bool, error)
	Exists(ctx context.Context, userID, videoID uint64) (bool, error)
	CountByVideo(ctx context.Context, videoID uint64) (int64, error)

	WithTx(tx *gorm.DB) LikeRepository
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &likeRepository{db: tx}
}

func (r *likeRepository) CreateIfAbsent(ctx context.Context, userID, videoID uint64) (bool, error) {
	like := &model.Like{UserID: userID, VideoID: videoID}
	return createIfAbsent(r.db.WithContext(ctx), like, "user_id", "video_id")
}

func (r *likeRepository) Delete(ctx context.Context, userID, videoID uint64) (bool, error) {
	// 用原生SQL做硬删除，避免gorm按主键翻译条件
	result := r.db.WithContext(ctx).Exec("DELETE FROM likes WHERE user_id = ? AND video_id = ?", userID, videoID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, videoID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) CountByVideo(ctx context.Context, videoID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}

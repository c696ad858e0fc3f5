package repository

import (
	"Orion_Shorts/internal/model"
	"context"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	// Delete 返回是否真的删掉了一行，并发删除同一条评论时只有一个请求拿到 true
	Delete(ctx context.Context, commentID uint64) (bool, error)
	// 视频下的评论，最新的在前
	ListByVideo(ctx context.Context, videoID uint64) ([]model.Comment, error)
	CountByVideo(ctx context.Context, videoID uint64) (int64, error)

	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// WithTx 返回一个新的、使用事务的 commentRepository 实例
func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// 利用commentID找comment，并顺便Preload评论者
func (r *commentRepository) FindByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var result model.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&result, commentID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID uint64) (bool, error) {
	result := r.db.WithContext(ctx).Exec("DELETE FROM comments WHERE id = ?", commentID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *commentRepository) ListByVideo(ctx context.Context, videoID uint64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("video_id = ?", videoID).
		Order("created_at desc").Order("id desc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByVideo(ctx context.Context, videoID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}

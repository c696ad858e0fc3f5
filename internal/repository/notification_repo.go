package repository

import (
	"Orion_Shorts/internal/model"
	"context"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	// 接收者的全部通知，最新的在前
	ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error)
	// 把接收者所有未读通知标为已读，返回本次改动的行数
	MarkAllSeen(ctx context.Context, userID uint64) (int64, error)
	CountUnseen(ctx context.Context, userID uint64) (int64, error)

	WithTx(tx *gorm.DB) NotificationRepository
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Preload("TriggeringUser").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkAllSeen(ctx context.Context, userID uint64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND seen = ?", userID, false).
		UpdateColumn("seen", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) CountUnseen(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND seen = ?", userID, false).
		Count(&count).Error
	return count, err
}

package service

import (
	"Orion_Shorts/internal/data"
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/repository"
	"Orion_Shorts/pkg/metrics"
	"context"
	"fmt"
)

type NotificationService interface {
	// 当前用户的全部通知，最新的在前
	ListNotifications(ctx context.Context, userID uint64) ([]model.Notification, error)
	// 批量标记已读，幂等，返回本次标记的条数
	MarkAllSeen(ctx context.Context, userID uint64) (int64, error)
	CountUnseen(ctx context.Context, userID uint64) (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) ListNotifications(ctx context.Context, userID uint64) ([]model.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID)
}

func (s *notificationService) MarkAllSeen(ctx context.Context, userID uint64) (int64, error) {
	return s.notificationRepo.MarkAllSeen(ctx, userID)
}

func (s *notificationService) CountUnseen(ctx context.Context, userID uint64) (int64, error) {
	return s.notificationRepo.CountUnseen(ctx, userID)
}

// notify 在调用方的事务里写一条通知，返回是否写入；接收者就是触发者本人时不通知
func notify(ctx context.Context, repos *data.Repositories, recipientID uint64, actor *model.User, typ string, videoID *uint64) (bool, error) {
	if recipientID == actor.ID {
		return false, nil
	}
	notification := &model.Notification{
		UserID:           recipientID,
		Content:          notificationContent(typ, actor.Username),
		VideoID:          videoID,
		Type:             typ,
		TriggeringUserID: &actor.ID,
	}
	if err := repos.NotificationRepo.Create(ctx, notification); err != nil {
		return false, err
	}
	return true, nil
}

// 事务提交之后再记指标，回滚的通知不计数
func countNotification(notified bool, typ string) {
	if notified {
		metrics.NotificationsCreated.WithLabelValues(typ).Inc()
	}
}

func notificationContent(typ, username string) string {
	switch typ {
	case model.NotificationLike:
		return fmt.Sprintf("%s liked your video", username)
	case model.NotificationComment:
		return fmt.Sprintf("%s commented on your video", username)
	case model.NotificationFollow:
		return fmt.Sprintf("%s started following you", username)
	default:
		return username
	}
}

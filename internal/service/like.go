package service

import (
	"Orion_Shorts/internal/data"
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/repository"
	"Orion_Shorts/pkg/metrics"
	"context"
	"errors"

	"gorm.io/gorm"
)

type LikeService interface {
	// 点赞/取消点赞：没有点赞记录就创建并通知作者，有就删除
	ToggleLike(ctx context.Context, userID, videoID uint64) (ToggleResult, error)
	LikeStatus(ctx context.Context, userID, videoID uint64) (bool, error)
}

type likeService struct {
	uow       data.UnitOfWork
	videoRepo repository.VideoRepository
	likeRepo  repository.LikeRepository
}

func NewLikeService(uow data.UnitOfWork, videoRepo repository.VideoRepository, likeRepo repository.LikeRepository) LikeService {
	return &likeService{
		uow:       uow,
		videoRepo: videoRepo,
		likeRepo:  likeRepo,
	}
}

// 点赞记录、like_count和通知在同一个事务里：1、确认视频和操作者存在 2、插入（已存在则不插） 3、插入成功则+1并通知，否则删除并-1
func (s *likeService) ToggleLike(ctx context.Context, userID, videoID uint64) (ToggleResult, error) {
	var result ToggleResult
	var notified bool
	err := s.uow.Execute(ctx, func(repos *data.Repositories) error {
		video, actor, err := loadVideoAndActor(ctx, repos, videoID, userID)
		if err != nil {
			return err
		}

		created, err := repos.LikeRepo.CreateIfAbsent(ctx, userID, videoID)
		if err != nil {
			return err
		}
		if created {
			if err := repos.VideoRepo.IncrementLikeCount(ctx, videoID); err != nil {
				return err
			}
			notified, err = notify(ctx, repos, video.AuthorID, actor, model.NotificationLike, &video.ID)
			if err != nil {
				return err
			}
			result = ToggleCreated
			return nil
		}

		removed, err := repos.LikeRepo.Delete(ctx, userID, videoID)
		if err != nil {
			return err
		}
		// 并发的另一个请求已经删掉了这一行，计数器也由它负责
		if removed {
			if err := repos.VideoRepo.DecrementLikeCount(ctx, videoID); err != nil {
				return err
			}
		}
		result = ToggleRemoved
		return nil
	})
	if err != nil {
		return 0, err
	}

	invalidateVideoCache(ctx, s.videoRepo, videoID)
	countNotification(notified, model.NotificationLike)
	metrics.Toggles.WithLabelValues("like", result.String()).Inc()
	return result, nil
}

func (s *likeService) LikeStatus(ctx context.Context, userID, videoID uint64) (bool, error) {
	if _, err := s.videoRepo.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrVideoNotFound
		}
		return false, err
	}
	return s.likeRepo.Exists(ctx, userID, videoID)
}

// loadVideoAndActor 在事务里取目标视频和操作者，任一不存在都映射成领域错误
func loadVideoAndActor(ctx context.Context, repos *data.Repositories, videoID, userID uint64) (*model.Video, *model.User, error) {
	video, err := repos.VideoRepo.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrVideoNotFound
		}
		return nil, nil, err
	}
	actor, err := repos.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	return video, actor, nil
}

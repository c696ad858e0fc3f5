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

// 推荐关注列表的长度
const discoverLimit = 10

// FollowerProfile 是粉丝列表的一行，IsFollowing表示当前用户是否也关注了这个粉丝
type FollowerProfile struct {
	UserProfile
	IsFollowing bool
}

type FollowService interface {
	// 关注/取消关注，不能关注自己
	ToggleFollow(ctx context.Context, followerID, targetID uint64) (ToggleResult, error)
	FollowStatus(ctx context.Context, followerID, targetID uint64) (bool, error)

	Followers(ctx context.Context, targetID, viewerID uint64) ([]FollowerProfile, error)
	Following(ctx context.Context, userID uint64) ([]UserProfile, error)
	// 互相关注的用户
	Friends(ctx context.Context, userID uint64) ([]UserProfile, error)
	Discover(ctx context.Context, userID uint64) ([]UserProfile, error)
}

type followService struct {
	uow        data.UnitOfWork
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewFollowService(uow data.UnitOfWork, userRepo repository.UserRepository, followRepo repository.FollowRepository) FollowService {
	return &followService{
		uow:        uow,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// 关注边和通知在同一个事务里，只有新建关注才通知被关注者
func (s *followService) ToggleFollow(ctx context.Context, followerID, targetID uint64) (ToggleResult, error) {
	if followerID == targetID {
		return 0, NewValidationError("user_id", "不能关注自己")
	}

	var result ToggleResult
	var notified bool
	err := s.uow.Execute(ctx, func(repos *data.Repositories) error {
		if _, err := repos.UserRepo.FindByID(ctx, targetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		actor, err := repos.UserRepo.FindByID(ctx, followerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		created, err := repos.FollowRepo.CreateIfAbsent(ctx, followerID, targetID)
		if err != nil {
			return err
		}
		if created {
			notified, err = notify(ctx, repos, targetID, actor, model.NotificationFollow, nil)
			if err != nil {
				return err
			}
			result = ToggleCreated
			return nil
		}
		if _, err := repos.FollowRepo.Delete(ctx, followerID, targetID); err != nil {
			return err
		}
		result = ToggleRemoved
		return nil
	})
	if err != nil {
		return 0, err
	}

	countNotification(notified, model.NotificationFollow)
	metrics.Toggles.WithLabelValues("follow", result.String()).Inc()
	return result, nil
}

func (s *followService) FollowStatus(ctx context.Context, followerID, targetID uint64) (bool, error) {
	if err := s.ensureUser(ctx, targetID); err != nil {
		return false, err
	}
	return s.followRepo.Exists(ctx, followerID, targetID)
}

func (s *followService) Followers(ctx context.Context, targetID, viewerID uint64) ([]FollowerProfile, error) {
	if err := s.ensureUser(ctx, targetID); err != nil {
		return nil, err
	}
	rows, err := s.followRepo.ListFollowers(ctx, targetID, viewerID)
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.User)
	}
	profiles, err := buildProfiles(ctx, s.userRepo, users)
	if err != nil {
		return nil, err
	}
	result := make([]FollowerProfile, 0, len(rows))
	for i, row := range rows {
		result = append(result, FollowerProfile{UserProfile: profiles[i], IsFollowing: row.IsFollowing})
	}
	return result, nil
}

func (s *followService) Following(ctx context.Context, userID uint64) ([]UserProfile, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildProfiles(ctx, s.userRepo, users)
}

func (s *followService) Friends(ctx context.Context, userID uint64) ([]UserProfile, error) {
	users, err := s.followRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildProfiles(ctx, s.userRepo, users)
}

func (s *followService) Discover(ctx context.Context, userID uint64) ([]UserProfile, error) {
	users, err := s.userRepo.Discover(ctx, userID, discoverLimit)
	if err != nil {
		return nil, err
	}
	return buildProfiles(ctx, s.userRepo, users)
}

func (s *followService) ensureUser(ctx context.Context, userID uint64) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

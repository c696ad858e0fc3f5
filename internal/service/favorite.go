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

// 收藏不影响任何计数器，也不产生通知
type FavoriteService interface {
	ToggleFavorite(ctx context.Context, userID, videoID uint64) (ToggleResult, error)
	ListFavorites(ctx context.Context, userID uint64) ([]model.Favorite, error)
}

type favoriteService struct {
	uow          data.UnitOfWork
	favoriteRepo repository.FavoriteRepository
}

func NewFavoriteService(uow data.UnitOfWork, favoriteRepo repository.FavoriteRepository) FavoriteService {
	return &favoriteService{
		uow:          uow,
		favoriteRepo: favoriteRepo,
	}
}

func (s *favoriteService) ToggleFavorite(ctx context.Context, userID, videoID uint64) (ToggleResult, error) {
	var result ToggleResult
	err := s.uow.Execute(ctx, func(repos *data.Repositories) error {
		if _, err := repos.VideoRepo.FindByID(ctx, videoID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVideoNotFound
			}
			return err
		}

		created, err := repos.FavoriteRepo.CreateIfAbsent(ctx, userID, videoID)
		if err != nil {
			return err
		}
		if created {
			result = ToggleCreated
			return nil
		}
		if _, err := repos.FavoriteRepo.Delete(ctx, userID, videoID); err != nil {
			return err
		}
		result = ToggleRemoved
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.Toggles.WithLabelValues("favorite", result.String()).Inc()
	return result, nil
}

// 最新收藏的在前，带上视频和作者
func (s *favoriteService) ListFavorites(ctx context.Context, userID uint64) ([]model.Favorite, error) {
	return s.favoriteRepo.ListByUser(ctx, userID)
}

package service

import (
	"Orion_Shorts/internal/data"
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/repository"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type CommentService interface {
	// 发表评论：写评论、comment_count+1、通知作者
	PostComment(ctx context.Context, userID, videoID uint64, text string) (*model.Comment, error)
	// 只有评论者本人可以删除
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	// 最新的评论在前
	ListComments(ctx context.Context, videoID uint64) ([]model.Comment, error)
}

type commentService struct {
	uow         data.UnitOfWork
	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
}

func NewCommentService(uow data.UnitOfWork, videoRepo repository.VideoRepository, commentRepo repository.CommentRepository) CommentService {
	return &commentService{
		uow:         uow,
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
	}
}

func (s *commentService) PostComment(ctx context.Context, userID, videoID uint64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text", "评论内容不能为空")
	}

	var comment *model.Comment
	var notified bool
	err := s.uow.Execute(ctx, func(repos *data.Repositories) error {
		video, actor, err := loadVideoAndActor(ctx, repos, videoID, userID)
		if err != nil {
			return err
		}

		comment = &model.Comment{VideoID: videoID, UserID: userID, Text: text}
		if err := repos.CommentRepo.Create(ctx, comment); err != nil {
			return err
		}
		comment.User = *actor
		if err := repos.VideoRepo.IncrementCommentCount(ctx, videoID); err != nil {
			return err
		}
		notified, err = notify(ctx, repos, video.AuthorID, actor, model.NotificationComment, &video.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateVideoCache(ctx, s.videoRepo, videoID)
	countNotification(notified, model.NotificationComment)
	return comment, nil
}

// 删除评论：1、找到评论 2、检查是否本人 3、删除评论，删到了才-1
func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	var videoID uint64
	err := s.uow.Execute(ctx, func(repos *data.Repositories) error {
		comment, err := repos.CommentRepo.FindByID(ctx, commentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		if comment.UserID != userID {
			return ErrNotCommentAuthor
		}
		videoID = comment.VideoID

		removed, err := repos.CommentRepo.Delete(ctx, commentID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrCommentNotFound
		}
		return repos.VideoRepo.DecrementCommentCount(ctx, videoID)
	})
	if err != nil {
		return err
	}

	invalidateVideoCache(ctx, s.videoRepo, videoID)
	return nil
}

func (s *commentService) ListComments(ctx context.Context, videoID uint64) ([]model.Comment, error) {
	if _, err := s.videoRepo.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return s.commentRepo.ListByVideo(ctx, videoID)
}

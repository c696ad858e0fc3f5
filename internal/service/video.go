package service

import (
	"Orion_Shorts/internal/data"
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/repository"
	"Orion_Shorts/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	videoPrefix     = "videos"
	thumbnailPrefix = "thumbnails"
)

// NewVideo 是发布视频的输入，Thumbnail可选
type NewVideo struct {
	Title       string
	Description string
	Video       Upload
	Thumbnail   *Upload
}

type VideoService interface {
	CreateVideo(ctx context.Context, authorID uint64, input NewVideo) (*model.Video, error)
	GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error)
	// ViewVideo 读取视频详情并记一次播放
	ViewVideo(ctx context.Context, videoID uint64) (*model.Video, error)
	// 只有作者可以删除，连带删除点赞、评论、收藏和通知
	DeleteVideo(ctx context.Context, userID, videoID uint64) error

	GetFeed(ctx context.Context, page PageRequest) (*Page[model.Video], error)
	Trending(ctx context.Context, page PageRequest) (*Page[model.Video], error)
	UserVideos(ctx context.Context, userID uint64, page PageRequest) (*Page[model.Video], error)
	FollowingFeed(ctx context.Context, userID uint64, page PageRequest) (*Page[model.Video], error)
}

type videoService struct {
	sf singleflight.Group

	uow       data.UnitOfWork
	videoRepo repository.VideoRepository
	userRepo  repository.UserRepository
	storage   MediaStorage
	views     ViewRecorder
}

func NewVideoService(uow data.UnitOfWork, videoRepo repository.VideoRepository, userRepo repository.UserRepository, storage MediaStorage, views ViewRecorder) VideoService {
	return &videoService{
		uow:       uow,
		videoRepo: videoRepo,
		userRepo:  userRepo,
		storage:   storage,
		views:     views,
	}
}

// 发布视频：1、校验 2、上传视频和封面 3、插入数据库。任何一步失败都删掉已经上传的对象
func (s *videoService) CreateVideo(ctx context.Context, authorID uint64, input NewVideo) (*model.Video, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, NewValidationError("title", "标题不能为空")
	}
	if err := input.Video.validate("video_file", "video/"); err != nil {
		return nil, err
	}
	if input.Thumbnail != nil {
		if err := input.Thumbnail.validate("thumbnail", "image/"); err != nil {
			return nil, err
		}
	}

	videoKey, err := s.storage.Upload(ctx, videoPrefix, input.Video.Filename, input.Video.Reader, input.Video.Size, input.Video.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}
	var thumbnailKey string
	if input.Thumbnail != nil {
		t := input.Thumbnail
		thumbnailKey, err = s.storage.Upload(ctx, thumbnailPrefix, t.Filename, t.Reader, t.Size, t.ContentType)
		if err != nil {
			removeObject(ctx, s.storage, videoKey)
			return nil, fmt.Errorf("upload thumbnail: %w", err)
		}
	}

	newVideo := &model.Video{
		AuthorID:     authorID,
		Title:        title,
		Description:  input.Description,
		VideoKey:     videoKey,
		ThumbnailKey: thumbnailKey,
	}
	if err := s.videoRepo.Create(ctx, newVideo); err != nil {
		removeObject(ctx, s.storage, videoKey)
		removeObject(ctx, s.storage, thumbnailKey)
		return nil, err
	}

	created, err := s.videoRepo.FindByID(ctx, newVideo.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// 根据videoID查找视频：1、查找Redis缓存 2、通过SingleFlight进行数据库查找并回填缓存
func (s *videoService) GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	video, err := s.videoRepo.GetVideoCache(ctx, videoID)
	if err == nil && video != nil {
		return video, nil
	}
	// Redis本身出错不影响读，回源数据库
	if err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).Warn("读取视频缓存失败")
	}

	key := fmt.Sprintf("get_video_%d", videoID)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		dbVideo, dbErr := s.videoRepo.FindByID(ctx, videoID)
		if dbErr != nil {
			return nil, dbErr
		}
		if cacheErr := s.videoRepo.SetVideoCache(ctx, dbVideo); cacheErr != nil {
			logger.Log.WithError(cacheErr).WithField("video_id", videoID).Warn("写入视频缓存失败")
		}
		return dbVideo, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return result.(*model.Video), nil
}

// 播放数最终一致：记录失败只打日志，不影响这次读取
func (s *videoService) ViewVideo(ctx context.Context, videoID uint64) (*model.Video, error) {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.views.RecordView(ctx, videoID); err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).Error("记录播放失败")
	}
	return video, nil
}

func (s *videoService) DeleteVideo(ctx context.Context, userID, videoID uint64) error {
	var deleted *model.Video
	err := s.uow.Execute(ctx, func(repos *data.Repositories) error {
		video, err := repos.VideoRepo.FindByID(ctx, videoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVideoNotFound
			}
			return err
		}
		if video.AuthorID != userID {
			return ErrNotVideoOwner
		}
		deleted = video
		return repos.VideoRepo.DeleteCascade(ctx, videoID)
	})
	if err != nil {
		return err
	}

	invalidateVideoCache(ctx, s.videoRepo, videoID)
	// 行已经删掉，对象删除失败只会留下孤儿文件
	removeObject(ctx, s.storage, deleted.VideoKey)
	removeObject(ctx, s.storage, deleted.ThumbnailKey)
	return nil
}

func (s *videoService) GetFeed(ctx context.Context, page PageRequest) (*Page[model.Video], error) {
	page = page.Normalize()
	videos, total, err := s.videoRepo.FindLatest(ctx, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	return &Page[model.Video]{Items: videos, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// 热度 = 播放 + 点赞 + 评论，同分时新的在前
func (s *videoService) Trending(ctx context.Context, page PageRequest) (*Page[model.Video], error) {
	page = page.Normalize()
	videos, total, err := s.videoRepo.FindTrending(ctx, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	return &Page[model.Video]{Items: videos, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *videoService) UserVideos(ctx context.Context, userID uint64, page PageRequest) (*Page[model.Video], error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	page = page.Normalize()
	videos, total, err := s.videoRepo.FindByAuthor(ctx, userID, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	return &Page[model.Video]{Items: videos, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *videoService) FollowingFeed(ctx context.Context, userID uint64, page PageRequest) (*Page[model.Video], error) {
	page = page.Normalize()
	videos, total, err := s.videoRepo.FindFollowingFeed(ctx, userID, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	return &Page[model.Video]{Items: videos, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// invalidateVideoCache 在计数器变化的事务提交之后调用，失败只记日志，缓存会自然过期
func invalidateVideoCache(ctx context.Context, videoRepo repository.VideoRepository, videoID uint64) {
	if err := videoRepo.DeleteVideoCache(ctx, videoID); err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).Warn("删除视频缓存失败")
	}
}

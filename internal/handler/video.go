package handler

import (
	"Orion_Shorts/internal/dto"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

type VideoHandler interface {
	CreateVideo(c *gin.Context)
	DeleteVideo(c *gin.Context)

	GetVideoByID(c *gin.Context)
	GetFeed(c *gin.Context)
	GetTrending(c *gin.Context)
	GetUserVideos(c *gin.Context)
	GetFollowingFeed(c *gin.Context)
}

type videoHandler struct {
	VideoService service.VideoService
	urls         dto.URLResolver
}

func NewVideoHandler(videoService service.VideoService, urls dto.URLResolver) VideoHandler {
	return &videoHandler{VideoService: videoService, urls: urls}
}

// 发布视频：1、解析multipart表单（video_file必填，thumbnail可选） 2、service层上传并落库 3、将返回的视频结构通过dto传回
func (h *videoHandler) CreateVideo(c *gin.Context) {
	authorID, ok := mustUserID(c)
	if !ok {
		return
	}
	// 蛇形命名法（日志聚合平台ELK、前端JavaScript）
	logCtx := logger.Log.WithField("author_id", authorID)
	logCtx.Info("开始处理发布视频请求")

	videoFile, closeVideo, err := formUpload(c, "video_file")
	if err != nil {
		sendValidationError(c, map[string]string{"video_file": "请上传视频文件"})
		return
	}
	defer closeVideo()

	input := service.NewVideo{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Video:       videoFile,
	}
	if _, err := c.FormFile("thumbnail"); err == nil {
		thumbnail, closeThumbnail, err := formUpload(c, "thumbnail")
		if err != nil {
			sendValidationError(c, map[string]string{"thumbnail": "封面文件无法读取"})
			return
		}
		defer closeThumbnail()
		input.Thumbnail = &thumbnail
	}

	video, err := h.VideoService.CreateVideo(c.Request.Context(), authorID, input)
	if err != nil {
		handleServiceError(c, logCtx, err, "发布视频失败")
		return
	}
	// 没有赋值，临时追加上下文，避免污染后续其他日志
	logCtx.WithField("video_id", video.ID).Info("视频发布成功")

	c.JSON(http.StatusCreated, gin.H{
		"message": "视频发布成功",
		"data":    dto.ToVideoResponse(video, h.urls),
	})
}

func (h *videoHandler) DeleteVideo(c *gin.Context) {
	videoID, ok := parseIDParam(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("video_id", videoID)

	if err := h.VideoService.DeleteVideo(c.Request.Context(), userID, videoID); err != nil {
		handleServiceError(c, logCtx, err, "删除视频失败")
		return
	}
	logCtx.Info("视频删除成功")
	c.Status(http.StatusNoContent)
}

// 查看视频详情，同时记一次播放
func (h *videoHandler) GetVideoByID(c *gin.Context) {
	videoID, ok := parseIDParam(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("video_id", videoID)

	video, err := h.VideoService.ViewVideo(c.Request.Context(), videoID)
	if err != nil {
		handleServiceError(c, logCtx, err, "查找视频失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToVideoResponse(video, h.urls)})
}

// GET /videos?page=&page_size=，全部视频按发布时间倒序
func (h *videoHandler) GetFeed(c *gin.Context) {
	logCtx := logger.Log.WithField("ip", c.ClientIP())

	page, err := h.VideoService.GetFeed(c.Request.Context(), pageRequest(c))
	if err != nil {
		handleServiceError(c, logCtx, err, "获取视频列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToPageResponse(page, dto.ToVideoResponses(page.Items, h.urls))})
}

// GET /videos/trending?page=&page_size=
func (h *videoHandler) GetTrending(c *gin.Context) {
	// 攻击溯源，用户分析，问题排查
	logCtx := logger.Log.WithField("ip", c.ClientIP())

	page, err := h.VideoService.Trending(c.Request.Context(), pageRequest(c))
	if err != nil {
		handleServiceError(c, logCtx, err, "获取热门视频失败")
		return
	}
	logCtx.WithField("count", len(page.Items)).Debug("成功获取热门视频")
	c.JSON(http.StatusOK, gin.H{"data": dto.ToPageResponse(page, dto.ToVideoResponses(page.Items, h.urls))})
}

func (h *videoHandler) GetUserVideos(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id", "无效的用户ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("target_id", userID)

	page, err := h.VideoService.UserVideos(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		handleServiceError(c, logCtx, err, "获取用户视频失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToPageResponse(page, dto.ToVideoResponses(page.Items, h.urls))})
}

// 关注的人发布的视频，最新的在前
func (h *videoHandler) GetFollowingFeed(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID)

	page, err := h.VideoService.FollowingFeed(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		handleServiceError(c, logCtx, err, "获取关注视频流失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToPageResponse(page, dto.ToVideoResponses(page.Items, h.urls))})
}

// formUpload 打开multipart表单里的文件，返回的closeFn由调用方defer
func formUpload(c *gin.Context, field string) (service.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		return service.Upload{}, nil, err
	}
	file, err := header.Open()
	if err != nil {
		return service.Upload{}, nil, err
	}
	upload := service.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	return upload, func() { _ = file.Close() }, nil
}

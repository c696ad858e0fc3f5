package handler

import (
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LikeHandler interface {
	ToggleLike(c *gin.Context)
	LikeStatus(c *gin.Context)
}

type likeHandler struct {
	LikeService service.LikeService
}

func NewLikeHandler(likeService service.LikeService) LikeHandler {
	return &likeHandler{LikeService: likeService}
}

// 点赞/取消点赞：1、从URL通过:video_id获取videoID 2、从认证后的context获取userID 3、执行切换，新建返回201，取消返回204
func (h *likeHandler) ToggleLike(c *gin.Context) {
	// :video_id用来定位资源(Resource)，把它放在URL路径里，用c.Param()获取
	videoID, ok := parseIDParam(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("video_id", videoID)

	result, err := h.LikeService.ToggleLike(c.Request.Context(), userID, videoID)
	if err != nil {
		handleServiceError(c, logCtx, err, "点赞失败")
		return
	}
	logCtx.WithField("result", result.String()).Info("点赞状态已切换")
	respondToggle(c, result, "点赞成功")
}

func (h *likeHandler) LikeStatus(c *gin.Context) {
	videoID, ok := parseIDParam(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("video_id", videoID)

	liked, err := h.LikeService.LikeStatus(c.Request.Context(), userID, videoID)
	if err != nil {
		handleServiceError(c, logCtx, err, "查询点赞状态失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

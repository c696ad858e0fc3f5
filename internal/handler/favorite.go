package handler

import (
	"Orion_Shorts/internal/dto"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler interface {
	ToggleFavorite(c *gin.Context)
	ListFavorites(c *gin.Context)
}

type favoriteHandler struct {
	FavoriteService service.FavoriteService
	urls            dto.URLResolver
}

func NewFavoriteHandler(favoriteService service.FavoriteService, urls dto.URLResolver) FavoriteHandler {
	return &favoriteHandler{FavoriteService: favoriteService, urls: urls}
}

func (h *favoriteHandler) ToggleFavorite(c *gin.Context) {
	videoID, ok := parseIDParam(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("video_id", videoID)

	result, err := h.FavoriteService.ToggleFavorite(c.Request.Context(), userID, videoID)
	if err != nil {
		handleServiceError(c, logCtx, err, "收藏失败")
		return
	}
	logCtx.WithField("result", result.String()).Info("收藏状态已切换")
	respondToggle(c, result, "收藏成功")
}

func (h *favoriteHandler) ListFavorites(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	favorites, err := h.FavoriteService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("user_id", userID), err, "获取收藏列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToFavoriteResponses(favorites, h.urls)})
}

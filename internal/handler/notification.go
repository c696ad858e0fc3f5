package handler

import (
	"Orion_Shorts/internal/dto"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

type NotificationHandler interface {
	ListNotifications(c *gin.Context)
	MarkSeen(c *gin.Context)
}

type notificationHandler struct {
	NotificationService service.NotificationService
	urls                dto.URLResolver
}

func NewNotificationHandler(notificationService service.NotificationService, urls dto.URLResolver) NotificationHandler {
	return &notificationHandler{NotificationService: notificationService, urls: urls}
}

func (h *notificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID)

	notifications, err := h.NotificationService.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取通知失败")
		return
	}
	unseen, err := h.NotificationService.CountUnseen(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取通知失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   dto.ToNotificationResponses(notifications, h.urls),
		"unseen": unseen,
	})
}

// 全部标记为已读，重复调用不会出错
func (h *notificationHandler) MarkSeen(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID)

	marked, err := h.NotificationService.MarkAllSeen(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logCtx, err, "标记已读失败")
		return
	}
	logCtx.WithField("marked", marked).Info("通知已标记为已读")
	c.JSON(http.StatusOK, gin.H{"message": "已全部标记为已读", "marked": marked})
}

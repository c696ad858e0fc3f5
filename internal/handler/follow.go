package handler

import (
	"Orion_Shorts/internal/dto"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FollowHandler interface {
	ToggleFollow(c *gin.Context)
	FollowStatus(c *gin.Context)
	GetFollowers(c *gin.Context)
	GetFollowing(c *gin.Context)
	GetFriends(c *gin.Context)
	Discover(c *gin.Context)
}

type followHandler struct {
	FollowService service.FollowService
	urls          dto.URLResolver
}

func NewFollowHandler(followService service.FollowService, urls dto.URLResolver) FollowHandler {
	return &followHandler{FollowService: followService, urls: urls}
}

// 关注/取消关注 :user_id，新建返回201，取消返回204
func (h *followHandler) ToggleFollow(c *gin.Context) {
	targetID, ok := parseIDParam(c, "user_id", "无效的用户ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("target_id", targetID)

	result, err := h.FollowService.ToggleFollow(c.Request.Context(), userID, targetID)
	if err != nil {
		handleServiceError(c, logCtx, err, "关注失败")
		return
	}
	logCtx.WithField("result", result.String()).Info("关注状态已切换")
	respondToggle(c, result, "关注成功")
}

func (h *followHandler) FollowStatus(c *gin.Context) {
	targetID, ok := parseIDParam(c, "user_id", "无效的用户ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	following, err := h.FollowService.FollowStatus(c.Request.Context(), userID, targetID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("user_id", userID).WithField("target_id", targetID), err, "查询关注状态失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_following": following})
}

// :user_id 的粉丝，每个粉丝带上当前用户是否关注了他
func (h *followHandler) GetFollowers(c *gin.Context) {
	targetID, ok := parseIDParam(c, "user_id", "无效的用户ID")
	if !ok {
		return
	}
	viewerID, ok := mustUserID(c)
	if !ok {
		return
	}
	followers, err := h.FollowService.Followers(c.Request.Context(), targetID, viewerID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("target_id", targetID), err, "获取粉丝列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToFollowerResponses(followers, h.urls)})
}

func (h *followHandler) GetFollowing(c *gin.Context) {
	targetID, ok := parseIDParam(c, "user_id", "无效的用户ID")
	if !ok {
		return
	}
	following, err := h.FollowService.Following(c.Request.Context(), targetID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("target_id", targetID), err, "获取关注列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToUserResponses(following, h.urls)})
}

// 互相关注的好友
func (h *followHandler) GetFriends(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	friends, err := h.FollowService.Friends(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("user_id", userID), err, "获取好友列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToUserResponses(friends, h.urls)})
}

func (h *followHandler) Discover(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	users, err := h.FollowService.Discover(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("user_id", userID), err, "获取推荐用户失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToUserResponses(users, h.urls)})
}

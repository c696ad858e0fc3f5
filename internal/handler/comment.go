package handler

import (
	"Orion_Shorts/internal/dto"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CommentHandler interface {
	CreateComment(c *gin.Context)
	DeleteComment(c *gin.Context)

	GetComments(c *gin.Context)
}

type commentHandler struct {
	CommentService service.CommentService
	urls           dto.URLResolver
}

func NewCommentHandler(commentService service.CommentService, urls dto.URLResolver) CommentHandler {
	return &commentHandler{
		CommentService: commentService,
		urls:           urls,
	}
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// 视频评论：1、解析URL中的videoID参数 2、解析Body中的text 3、获取context中的userID（jwt） 4、创建评论并返回
func (h *commentHandler) CreateComment(c *gin.Context) {
	videoID, ok := parseIDParam(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Info("评论参数解析失败")
		sendBindError(c, err)
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("video_id", videoID)

	comment, err := h.CommentService.PostComment(c.Request.Context(), userID, videoID, req.Text)
	if err != nil {
		handleServiceError(c, logCtx, err, "评论失败")
		return
	}
	logCtx.WithField("comment_id", comment.ID).Info("评论成功")
	c.JSON(http.StatusCreated, gin.H{
		"message": "评论成功",
		"data":    dto.ToCommentResponse(comment, h.urls),
	})
}

// 删除评论，只有评论者本人可以删除
func (h *commentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id", "无效的评论ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("comment_id", commentID)

	if err := h.CommentService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		handleServiceError(c, logCtx, err, "删除评论失败")
		return
	}
	logCtx.Info("评论删除成功")
	c.Status(http.StatusNoContent)
}

// 视频下的评论，最新的在前
func (h *commentHandler) GetComments(c *gin.Context) {
	videoID, ok := parseIDParam(c, "video_id", "无效的视频ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("video_id", videoID)

	comments, err := h.CommentService.ListComments(c.Request.Context(), videoID)
	if err != nil {
		handleServiceError(c, logCtx, err, "获取评论失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToCommentResponses(comments, h.urls)})
}

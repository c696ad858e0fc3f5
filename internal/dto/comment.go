package dto

import (
	"Orion_Shorts/internal/model"
	"time"
)

type CommentResponse struct {
	ID        uint64    `json:"id"`
	VideoID   uint64    `json:"video_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    UserInfo  `json:"author"`
}

func ToCommentResponse(comment *model.Comment, urls URLResolver) CommentResponse {
	resp := CommentResponse{
		ID:        comment.ID,
		VideoID:   comment.VideoID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
	if comment.User.ID != 0 {
		resp.Author = ToUserInfo(&comment.User, urls)
	} else {
		resp.Author.ID = comment.UserID
	}
	return resp
}

func ToCommentResponses(comments []model.Comment, urls URLResolver) []CommentResponse {
	response := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		response = append(response, ToCommentResponse(&comments[i], urls))
	}
	return response
}

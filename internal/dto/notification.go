package dto

import (
	"Orion_Shorts/internal/model"
	"time"
)

type NotificationResponse struct {
	ID        uint64    `json:"id"`
	Type      string    `json:"notification_type"`
	Content   string    `json:"content"`
	VideoID   *uint64   `json:"video_id"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
	// 触发者已被删除时为null
	TriggeringUser *UserInfo `json:"triggering_user"`
}

func ToNotificationResponses(notifications []model.Notification, urls URLResolver) []NotificationResponse {
	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp := NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Content:   n.Content,
			VideoID:   n.VideoID,
			Seen:      n.Seen,
			CreatedAt: n.CreatedAt,
		}
		if n.TriggeringUser != nil {
			info := ToUserInfo(n.TriggeringUser, urls)
			resp.TriggeringUser = &info
		}
		response = append(response, resp)
	}
	return response
}

package dto

import (
	"Orion_Shorts/internal/model"
	"time"
)

type VideoResponse struct {
	ID           uint64    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	ViewCount    uint64    `json:"view_count"`
	LikeCount    uint64    `json:"likes_count"`
	CommentCount uint64    `json:"comment_count"`
	Author       UserInfo  `json:"author"`
}

// ToVideoResponse 把DB模型转换为API响应模型，对象key换成可访问的URL
func ToVideoResponse(video *model.Video, urls URLResolver) VideoResponse {
	resp := VideoResponse{
		ID:           video.ID,
		CreatedAt:    video.CreatedAt,
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     urls.URL(video.VideoKey),
		ThumbnailURL: urls.URL(video.ThumbnailKey),
		ViewCount:    video.ViewCount,
		LikeCount:    video.LikeCount,
		CommentCount: video.CommentCount,
	}
	// 检查Author是否被成功preload
	if video.Author.ID != 0 {
		resp.Author = ToUserInfo(&video.Author, urls)
	} else {
		resp.Author.ID = video.AuthorID
	}
	return resp
}

func ToVideoResponses(videos []model.Video, urls URLResolver) []VideoResponse {
	response := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		response = append(response, ToVideoResponse(&videos[i], urls))
	}
	return response
}

type FavoriteResponse struct {
	ID        uint64        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Video     VideoResponse `json:"video"`
}

func ToFavoriteResponses(favorites []model.Favorite, urls URLResolver) []FavoriteResponse {
	response := make([]FavoriteResponse, 0, len(favorites))
	for i := range favorites {
		response = append(response, FavoriteResponse{
			ID:        favorites[i].ID,
			CreatedAt: favorites[i].CreatedAt,
			Video:     ToVideoResponse(&favorites[i].Video, urls),
		})
	}
	return response
}

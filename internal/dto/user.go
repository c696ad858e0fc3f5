package dto

import (
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/token"
	"time"
)

// URLResolver 把对象存储的key转换成客户端能访问的地址
type URLResolver interface {
	URL(key string) string
}

// UserInfo 是嵌在视频、评论、通知里的简化用户信息
type UserInfo struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}

func ToUserInfo(user *model.User, urls URLResolver) UserInfo {
	return UserInfo{
		ID:             user.ID,
		Username:       user.Username,
		ProfilePicture: urls.URL(user.ProfilePicture),
	}
}

// UserResponse 是完整的用户资料，计数都是实时统计的
type UserResponse struct {
	ID             uint64    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"` // 只在本人的资料里返回
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	VideoCount     int64     `json:"video_count"`
	HeartCount     int64     `json:"heart_count"`
}

func ToUserResponse(profile *service.UserProfile, urls URLResolver) UserResponse {
	return UserResponse{
		ID:             profile.ID,
		Username:       profile.Username,
		Bio:            profile.Bio,
		ProfilePicture: urls.URL(profile.ProfilePicture),
		CreatedAt:      profile.CreatedAt,
		FollowerCount:  profile.Stats.FollowerCount,
		FollowingCount: profile.Stats.FollowingCount,
		VideoCount:     profile.Stats.VideoCount,
		HeartCount:     profile.Stats.HeartCount,
	}
}

// ToSelfResponse 是本人视角的资料，多一个邮箱
func ToSelfResponse(profile *service.UserProfile, urls URLResolver) UserResponse {
	resp := ToUserResponse(profile, urls)
	resp.Email = profile.Email
	return resp
}

func ToUserResponses(profiles []service.UserProfile, urls URLResolver) []UserResponse {
	response := make([]UserResponse, 0, len(profiles))
	for i := range profiles {
		response = append(response, ToUserResponse(&profiles[i], urls))
	}
	return response
}

// FollowerResponse 是粉丝列表的一行，is_following表示当前用户是否也关注了他
type FollowerResponse struct {
	UserResponse
	IsFollowing bool `json:"is_following"`
}

func ToFollowerResponses(followers []service.FollowerProfile, urls URLResolver) []FollowerResponse {
	response := make([]FollowerResponse, 0, len(followers))
	for i := range followers {
		response = append(response, FollowerResponse{
			UserResponse: ToUserResponse(&followers[i].UserProfile, urls),
			IsFollowing:  followers[i].IsFollowing,
		})
	}
	return response
}

type TokensResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func ToTokensResponse(pair *token.Pair) TokensResponse {
	return TokensResponse{Access: pair.Access, Refresh: pair.Refresh}
}

type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

func ToAuthResponse(result *service.AuthResult, urls URLResolver) AuthResponse {
	return AuthResponse{
		User:   ToSelfResponse(&result.User, urls),
		Tokens: ToTokensResponse(result.Tokens),
	}
}

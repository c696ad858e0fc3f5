package router

import (
	"Orion_Shorts/internal/handler"
	"Orion_Shorts/internal/middleware"
	"Orion_Shorts/pkg/token"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 汇总所有handler，避免SetupRouter的参数越来越长
type Handlers struct {
	User         handler.UserHandler
	Video        handler.VideoHandler
	Like         handler.LikeHandler
	Favorite     handler.FavoriteHandler
	Follow       handler.FollowHandler
	Comment      handler.CommentHandler
	Notification handler.NotificationHandler
}

func SetupRouter(h Handlers, tokens *token.Manager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.MetricsMiddleware())

	// 允许任意来源跨域
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pang",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/signup", h.User.SignUp)
		apiV1.POST("/signin", h.User.SignIn)
		apiV1.POST("/token/refresh", h.User.RefreshToken)

		apiV1.GET("/videos", h.Video.GetFeed)
		apiV1.GET("/videos/trending", h.Video.GetTrending)
		apiV1.GET("/videos/:video_id", h.Video.GetVideoByID)
		apiV1.GET("/videos/:video_id/comments", h.Comment.GetComments)
		apiV1.GET("/users/search", h.User.SearchUsers)

		authorized := apiV1.Group("/")
		authorized.Use(middleware.AuthMiddleware(tokens))
		{
			authorized.GET("/profile", h.User.GetProfile)
			authorized.PATCH("/username", h.User.UpdateUsername)
			authorized.PATCH("/profile-picture", h.User.UpdateProfilePicture)

			authorized.POST("/videos", h.Video.CreateVideo)
			authorized.DELETE("/videos/:video_id", h.Video.DeleteVideo)
			authorized.GET("/feed/following", h.Video.GetFollowingFeed)

			authorized.POST("/videos/:video_id/like", h.Like.ToggleLike)
			authorized.GET("/videos/:video_id/like-status", h.Like.LikeStatus)

			authorized.POST("/videos/:video_id/favorite", h.Favorite.ToggleFavorite)
			authorized.GET("/favorites", h.Favorite.ListFavorites)

			authorized.POST("/videos/:video_id/comments", h.Comment.CreateComment)
			authorized.DELETE("/comments/:comment_id", h.Comment.DeleteComment)

			authorized.GET("/users/discover", h.Follow.Discover)
			authorized.GET("/users/:user_id", h.User.GetUser)
			authorized.GET("/users/:user_id/videos", h.Video.GetUserVideos)
			authorized.POST("/users/:user_id/follow", h.Follow.ToggleFollow)
			authorized.GET("/users/:user_id/follow-status", h.Follow.FollowStatus)
			authorized.GET("/users/:user_id/followers", h.Follow.GetFollowers)
			authorized.GET("/users/:user_id/following", h.Follow.GetFollowing)
			authorized.GET("/friends", h.Follow.GetFriends)

			authorized.GET("/notifications", h.Notification.ListNotifications)
			authorized.POST("/notifications/mark-seen", h.Notification.MarkSeen)
		}
	}

	return r
}

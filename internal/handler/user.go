package handler

import (
	"Orion_Shorts/internal/dto"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	SignUp(c *gin.Context)
	SignIn(c *gin.Context)
	RefreshToken(c *gin.Context)

	GetProfile(c *gin.Context)
	GetUser(c *gin.Context)
	UpdateUsername(c *gin.Context)
	UpdateProfilePicture(c *gin.Context)
	SearchUsers(c *gin.Context)
}

// 对Service进行封装
type userHandler struct {
	UserService service.UserService
	urls        dto.URLResolver
}

func NewUserHandler(userService service.UserService, urls dto.URLResolver) UserHandler {
	return &userHandler{UserService: userService, urls: urls}
}

// 用处：接收http发来的全部注册信息，用户名+邮箱+密码
type SignUpRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6"`
}

type SignInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type UpdateUsernameRequest struct {
	Username string `json:"username" binding:"required,max=150"`
}

// 注册：1、绑定并校验参数 2、service层注册并签发令牌 3、返回用户和令牌
func (h *userHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Info("注册参数解析失败")
		sendBindError(c, err)
		return
	}
	logCtx := logger.Log.WithField("username", req.Username)

	result, err := h.UserService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleServiceError(c, logCtx, err, "注册失败")
		return
	}
	logCtx.WithField("user_id", result.User.ID).Info("用户注册成功")
	c.JSON(http.StatusCreated, gin.H{
		"message": "注册成功",
		"data":    dto.ToAuthResponse(result, h.urls),
	})
}

func (h *userHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	logCtx := logger.Log.WithField("username", req.Username)

	result, err := h.UserService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, logCtx, err, "登录失败")
		return
	}
	logCtx.WithField("user_id", result.User.ID).Info("用户登录成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功",
		"data":    dto.ToAuthResponse(result, h.urls),
	})
}

func (h *userHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	pair, err := h.UserService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("ip", c.ClientIP()), err, "刷新令牌失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToTokensResponse(pair)})
}

// 当前登录用户自己的资料
func (h *userHandler) GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	profile, err := h.UserService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("user_id", userID), err, "获取用户资料失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToSelfResponse(profile, h.urls)})
}

func (h *userHandler) GetUser(c *gin.Context) {
	targetID, ok := parseIDParam(c, "user_id", "无效的用户ID")
	if !ok {
		return
	}
	profile, err := h.UserService.GetProfile(c.Request.Context(), targetID)
	if err != nil {
		handleServiceError(c, logger.Log.WithField("target_id", targetID), err, "获取用户资料失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToUserResponse(profile, h.urls)})
}

func (h *userHandler) UpdateUsername(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("username", req.Username)

	profile, err := h.UserService.UpdateUsername(c.Request.Context(), userID, req.Username)
	if err != nil {
		handleServiceError(c, logCtx, err, "修改用户名失败")
		return
	}
	logCtx.Info("修改用户名成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "修改用户名成功",
		"data":    dto.ToSelfResponse(profile, h.urls),
	})
}

// 更换头像：multipart表单的profile_picture字段
func (h *userHandler) UpdateProfilePicture(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID)

	upload, closeFn, err := formUpload(c, "profile_picture")
	if err != nil {
		sendValidationError(c, map[string]string{"profile_picture": "请上传头像文件"})
		return
	}
	defer closeFn()

	profile, err := h.UserService.UpdateProfilePicture(c.Request.Context(), userID, upload)
	if err != nil {
		handleServiceError(c, logCtx, err, "更换头像失败")
		return
	}
	logCtx.Info("更换头像成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "更换头像成功",
		"data":    dto.ToSelfResponse(profile, h.urls),
	})
}

// GET /users/search?search=
func (h *userHandler) SearchUsers(c *gin.Context) {
	query := c.Query("search")
	page := pageRequest(c)
	logCtx := logger.Log.WithField("search", query)

	result, err := h.UserService.Search(c.Request.Context(), query, page)
	if err != nil {
		handleServiceError(c, logCtx, err, "搜索用户失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToPageResponse(result, dto.ToUserResponses(result.Items, h.urls))})
}

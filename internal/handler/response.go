package handler

import (
	"Orion_Shorts/internal/service"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ErrorResponse 定义了标准的API错误响应结构
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func init() {
	// 校验错误里的字段名用json/form标签，而不是Go的字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
	}
}

// sendErrorResponse 是一个辅助函数，用于发送标准格式的错误响应
func sendErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message})
}

func sendValidationError(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "参数校验失败", Fields: fields})
}

// sendBindError 把绑定失败转换成字段级错误；不是校验错误（比如JSON格式错误）时只返回一句话
func sendBindError(c *gin.Context, err error) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		fields := make(map[string]string, len(errs))
		for _, fe := range errs {
			fields[fe.Field()] = validationMessage(fe)
		}
		sendValidationError(c, fields)
		return
	}
	sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "email":
		return "邮箱格式不正确"
	case "min":
		return "长度不能小于" + fe.Param()
	case "max":
		return "长度不能大于" + fe.Param()
	default:
		return "不合法"
	}
}

// handleServiceError 把service层的错误翻译成HTTP响应，未知错误只记日志、不把细节返回给客户端
func handleServiceError(c *gin.Context, logCtx *logrus.Entry, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		logCtx.WithError(err).Info("请求参数校验失败")
		sendValidationError(c, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		logCtx.WithError(err).Warn(fallback)
		sendErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		logCtx.WithError(err).Warn(fallback)
		sendErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		logCtx.WithError(err).Warn(fallback)
		sendErrorResponse(c, http.StatusUnauthorized, err.Error())
	default:
		logCtx.WithError(err).Error(fallback)
		sendErrorResponse(c, http.StatusInternalServerError, fallback)
	}
}

// respondToggle 新建关系返回201，删除关系返回204（无响应体）
func respondToggle(c *gin.Context, result service.ToggleResult, createdMessage string) {
	if result == service.ToggleCreated {
		c.JSON(http.StatusCreated, gin.H{"message": createdMessage})
		return
	}
	c.Status(http.StatusNoContent)
}

// currentUserID 取出认证中间件放进context的用户ID
func currentUserID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint64)
	return userID, ok
}

// mustUserID 在未认证时直接写回401，调用方只需判断ok
func mustUserID(c *gin.Context) (uint64, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		// 理论上中间件会拦截
		sendErrorResponse(c, http.StatusUnauthorized, "用户未认证")
	}
	return userID, ok
}

// URL中取回的是str，统一转化为uint64
func parseIDParam(c *gin.Context, name, message string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(c, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}

// pageRequest 读取 ?page=&page_size=，非法值交给Normalize回退成默认值
func pageRequest(c *gin.Context) service.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return service.PageRequest{Page: page, PageSize: pageSize}.Normalize()
}

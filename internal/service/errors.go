package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound  = errors.New("资源不存在")
	ErrForbidden = errors.New("没有权限")

	ErrVideoNotFound   error = &kindError{msg: "视频不存在", kind: ErrNotFound}
	ErrUserNotFound    error = &kindError{msg: "用户不存在", kind: ErrNotFound}
	ErrCommentNotFound error = &kindError{msg: "评论不存在", kind: ErrNotFound}

	ErrNotVideoOwner    error = &kindError{msg: "只有作者可以删除视频", kind: ErrForbidden}
	ErrNotCommentAuthor error = &kindError{msg: "只有评论者可以删除评论", kind: ErrForbidden}

	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidToken       = errors.New("无效的令牌")
)

// kindError 的消息可以直接返回给客户端，errors.Is 按kind归类
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// ValidationError 携带字段级别的错误信息，请求被拒绝且不会修改任何数据
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "参数校验失败: " + strings.Join(parts, "; ")
}

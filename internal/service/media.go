package service

import (
	"context"
	"io"
	"strings"
)

// MediaStorage 是对象存储，数据库里只保存它返回的key
type MediaStorage interface {
	Upload(ctx context.Context, prefix, filename string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Upload 是一个待上传的文件，Reader由调用方负责关闭
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

func (u Upload) validate(field, typePrefix string) error {
	if u.Reader == nil || u.Size <= 0 {
		return NewValidationError(field, "文件不能为空")
	}
	if !strings.HasPrefix(strings.ToLower(u.ContentType), typePrefix) {
		return NewValidationError(field, "文件类型不正确")
	}
	return nil
}

package testutil

import (
	"context"
	"errors"
	"io"
	"path"
	"strconv"
	"strings"
	"sync"
)

var ErrUploadFailed = errors.New("upload failed")

// MemoryStorage 是内存里的对象存储，FailPrefix匹配的上传会失败
type MemoryStorage struct {
	mu         sync.Mutex
	seq        int
	Objects    map[string][]byte
	FailPrefix string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: make(map[string][]byte)}
}

func (s *MemoryStorage) Upload(_ context.Context, prefix, filename string, r io.Reader, _ int64, _ string) (string, error) {
	if s.FailPrefix != "" && prefix == s.FailPrefix {
		return "", ErrUploadFailed
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	key := path.Join(prefix, "obj-"+strconv.Itoa(s.seq)+strings.ToLower(path.Ext(filename)))
	s.Objects[key] = body
	return key, nil
}

func (s *MemoryStorage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

func (s *MemoryStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return "http://media.test/" + key
}

func (s *MemoryStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok
}

func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}

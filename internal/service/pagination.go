package service

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest 页码从1开始；非法值回退到默认值，page_size超过上限时截断到上限
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset 跳过多少条记录再开始取，调用前需要先Normalize
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

func (p Page[T]) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Total
}

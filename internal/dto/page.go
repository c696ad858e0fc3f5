package dto

import "Orion_Shorts/internal/service"

// PageResponse 是分页列表的统一外形
type PageResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasNext  bool  `json:"has_next"`
}

func ToPageResponse[S, T any](page *service.Page[S], items []T) PageResponse[T] {
	return PageResponse[T]{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasNext:  page.HasNext(),
	}
}

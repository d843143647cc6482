package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a 1-based page window.
type PageRequest struct {
	Page     int
	PageSize int
}

func NewPageRequest(page, pageSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.PageSize }

func (p PageRequest) Limit() int { return p.PageSize }

// PageMeta mirrors the pagination block of list responses.
type PageMeta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func (p PageRequest) Meta(total int64) PageMeta {
	totalPages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	return PageMeta{
		CurrentPage:     p.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    p.PageSize,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}

// Page is one window of a list together with its pagination metadata.
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Meta: req.Meta(total)}
}

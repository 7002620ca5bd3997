package models

import "math"

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Details []string `json:"details,omitempty"`
	Stack   string   `json:"stack,omitempty"`
}

// Pagination describes one page of a filtered list.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest is a normalized page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest falls back to defaults for values that are missing or out of range.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate builds the pagination block for a total row count.
func (p PageRequest) Paginate(total int64) Pagination {
	return Pagination{
		Total: total,
		Page:  p.Page,
		Pages: int(math.Ceil(float64(total) / float64(p.Limit))),
		Limit: p.Limit,
	}
}

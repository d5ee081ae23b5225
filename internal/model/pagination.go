package model

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

type Pagination struct {
	Page    int
	PerPage int
}

// Normalize fills in page 1 and fallback per page, and caps per page.
func (p Pagination) Normalize(fallback int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = fallback
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

func (p Pagination) Limit() int {
	return p.PerPage
}

type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

func NewPage[T any](items []T, total int64, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if p.PerPage > 0 && total > 0 {
		last = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, PerPage: p.PerPage, LastPage: last}
}

// internal/domain/paging/paging.go

package paging

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Request is a page/limit pair from a list query
type Request struct {
	Page  int
	Limit int
}

// Normalize defaults and clamps the request instead of rejecting it
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

// Offset returns the number of rows to skip
func (r Request) Offset() int {
	n := r.Normalize()
	return (n.Page - 1) * n.Limit
}

// Result is one page of items plus totals
type Result[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewResult builds a page result for a normalized request
func NewResult[T any](items []T, total int64, req Request) Result[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return Result[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: pages,
	}
}

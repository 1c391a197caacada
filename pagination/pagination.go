package pagination

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Defaults applied by Paginate when a window bound is not provided.
const (
	DefaultSkip  = 0
	DefaultLimit = 10
)

// Request is an offset/limit window over an ordered result set.
type Request struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Paginate returns a copy of req with skip and limit applied. Nil overrides
// keep the value already present on req; zero limits fall back to DefaultLimit.
// Values are not clamped: out of range input is reported by Validate.
func Paginate(req Request, skip, limit *int) Request {
	if skip != nil {
		req.Skip = *skip
	}
	if limit != nil {
		req.Limit = *limit
	}
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}
	return req
}

// Validate checks skip >= 0 and limit >= 1.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Skip, validation.Min(0)),
		validation.Field(&r.Limit, validation.Required, validation.Min(1)),
	)
}

// Apply adds the skip/limit window to q.
func (r Request) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Offset(r.Skip).Limit(r.Limit)
}

// Filter is implemented by every listing filter. BuildPredicate AND-chains the
// filter's conditions onto q and must not add ordering or windowing.
type Filter interface {
	Window() Request
	BuildPredicate(q *bun.SelectQuery) *bun.SelectQuery
	CacheParams() map[string]any
	Validate() error
}

// Params returns the window as cache key parameters.
func (r Request) Params() map[string]any {
	return map[string]any{
		"skip":  r.Skip,
		"limit": r.Limit,
	}
}

// Page is one window of a listing together with the total filtered count.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Of builds a Page, replacing a nil items slice with an empty one.
func Of[T any](items []T, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total}
}

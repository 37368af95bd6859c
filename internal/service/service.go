// Package service contains application services for authentication and
// portfolio resources.
package service

import "github.com/kamensky/folio/internal/repository"

// Pagination bounds shared by all collection services.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams selects a page of a collection as requested by the API layer.
type ListParams struct {
	Page       int
	Limit      int
	Search     string
	Filter     string
	ActiveOnly bool
}

// query normalizes the request: page floors at 1, limit falls back to the
// default and is clamped to the maximum.
func (p ListParams) query() repository.ListQuery {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return repository.ListQuery{
		Search:     p.Search,
		Filter:     p.Filter,
		ActiveOnly: p.ActiveOnly,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	}
}

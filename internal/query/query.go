// Package query implements the shared list/pagination machinery every
// resource repository is built on: request parameter parsing with clamping,
// pagination metadata, whitelisted sorting, OR-ed substring search and typed
// relation expansion.
package query

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultLimit is the page size used when the caller supplies none.
	DefaultLimit = 10
	// MaxLimit caps the page size; larger requests are corrected, not rejected.
	MaxLimit = 100
	// StoreTimeout bounds every store round-trip issued through this package.
	StoreTimeout = 5 * time.Second
)

// Params captures the normalized pagination, sort, search and expansion
// options of a list request.
type Params struct {
	Page   int
	Limit  int
	Sort   string
	Search string
	Expand []string
}

// FromRequest parses list parameters from the request query string and
// clamps them into range.
func FromRequest(c *gin.Context) Params {
	p := Params{
		Sort:   strings.TrimSpace(c.Query("sort")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		p.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit))); err == nil {
		p.Limit = limit
	}
	if expand := strings.TrimSpace(c.Query("expand")); expand != "" {
		for _, name := range strings.Split(expand, ",") {
			if name = strings.TrimSpace(name); name != "" {
				p.Expand = append(p.Expand, name)
			}
		}
	}
	return p.Clamp()
}

// Clamp corrects out-of-range pagination values instead of rejecting them.
func (p Params) Clamp() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata block attached to every list response.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPagination computes pagination metadata for a page of a filtered set.
func NewPagination(page, limit, total int) *Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// StoreContext derives a context bounded by the store timeout.
func StoreContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, StoreTimeout)
}

// Paged runs the slice and count queries concurrently over the same filter
// arguments, so the total always reflects the filter rather than the page.
// Both are read-only; skew between the two snapshots is acceptable.
func Paged(ctx context.Context, db *sqlx.DB, dest interface{}, listQuery, countQuery string, args ...interface{}) (int, error) {
	ctx, cancel := StoreContext(ctx)
	defer cancel()

	var total int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.SelectContext(gctx, dest, listQuery, args...)
	})
	g.Go(func() error {
		return db.GetContext(gctx, &total, countQuery, args...)
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}

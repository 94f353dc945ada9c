// Package pagination implements the limit/offset window shared by every list
// endpoint.
//
// The window is the literal slice [offset:limit]: limit is an end index, not a
// page size. A request for limit=10&offset=5 yields five items, and any offset
// at or past limit yields an empty page.
package pagination

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

const (
	DefaultLimit  = 10
	DefaultOffset = 0
)

// ErrInvalidPageRequest is wrapped by FieldErrors returned from ParseRequest.
var ErrInvalidPageRequest = errors.New("invalid page request")

type PageRequest struct {
	Limit  int
	Offset int
}

// Window returns the first row to read and the number of rows to read.
func (p PageRequest) Window() (start, count int) {
	count = p.Limit - p.Offset
	if count < 0 {
		count = 0
	}
	return p.Offset, count
}

type Page[T any] struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Data   []T `json:"data"`
}

// FetchFunc reads count rows starting at start.
type FetchFunc[T any] func(ctx context.Context, start, count int) ([]T, error)

// Paginate applies the request window to fetch. fetch is not called for an
// empty window.
func Paginate[T any](ctx context.Context, req PageRequest, fetch FetchFunc[T]) (Page[T], error) {
	page := Page[T]{Limit: req.Limit, Offset: req.Offset, Data: []T{}}

	start, count := req.Window()
	if count == 0 {
		return page, nil
	}

	items, err := fetch(ctx, start, count)
	if err != nil {
		return page, err
	}
	if len(items) > count {
		items = items[:count]
	}
	if items != nil {
		page.Data = items
	}
	return page, nil
}

// Map converts the items of a page, keeping its window.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Limit: page.Limit, Offset: page.Offset, Data: make([]U, 0, len(page.Data))}
	for _, item := range page.Data {
		out.Data = append(out.Data, fn(item))
	}
	return out
}

// FieldErrors maps a query parameter to its validation messages.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	return ErrInvalidPageRequest.Error()
}

func (e FieldErrors) Unwrap() error {
	return ErrInvalidPageRequest
}

// ParseRequest reads limit and offset from the query string.
func ParseRequest(r *http.Request) (PageRequest, error) {
	req := PageRequest{Limit: DefaultLimit, Offset: DefaultOffset}
	errs := FieldErrors{}

	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		if v, ok := parseNonNegative(raw, "limit", errs); ok {
			req.Limit = v
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if v, ok := parseNonNegative(raw, "offset", errs); ok {
			req.Offset = v
		}
	}

	if len(errs) > 0 {
		return req, errs
	}
	return req, nil
}

func parseNonNegative(raw, field string, errs FieldErrors) (int, bool) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		errs[field] = append(errs[field], "A valid integer is required.")
		return 0, false
	}
	if v < 0 {
		errs[field] = append(errs[field], "Ensure this value is greater than or equal to 0.")
		return 0, false
	}
	return v, true
}

package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// MaxLimit caps an explicit limit. A zero limit means "no limit".
const MaxLimit = 1000

// Params holds the optional limit/offset of a list request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads limit and offset from the query string. Missing,
// malformed or non-positive values leave the list unbounded.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Unbounded reports whether every row should be returned.
func (p Params) Unbounded() bool {
	return p.Limit == 0 && p.Offset == 0
}

// SQL returns the LIMIT/OFFSET suffix for a query, or "" when unbounded.
func (p Params) SQL() string {
	switch {
	case p.Unbounded():
		return ""
	case p.Limit == 0:
		return fmt.Sprintf(" OFFSET %d", p.Offset)
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", p.Limit, p.Offset)
}

// Window returns the page of items selected by p.
func Window[T any](items []T, p Params) []T {
	if p.Offset >= len(items) {
		return items[:0]
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

package common

import (
	"math"
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination extracts page and per-page parameters from query values.
// perPage is capped at maxPerPage when maxPerPage is positive.
func ParsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}

// Window returns the [start, end) bounds of page within a collection of total items.
func Window(total, page, perPage int) (start, end int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return 0, total
	}
	if total <= 0 || page-1 > total/perPage {
		return total, total
	}
	start = (page - 1) * perPage
	if start > total {
		start = total
	}
	end = total
	if perPage < end-start {
		end = start + perPage
	}
	return start, end
}

// Offset is the number of rows to skip for page, saturating at MaxInt32
// instead of overflowing on absurd page numbers.
func Offset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	if page-1 > math.MaxInt32/perPage {
		return math.MaxInt32
	}
	return (page - 1) * perPage
}

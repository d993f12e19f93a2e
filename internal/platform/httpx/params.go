package httpx

import (
	"net/http"
	"strconv"

	"github.com/almanar-edu/almanar/internal/shared"
)

// PageParams reads page/per_page query parameters, clamping to sane bounds.
func PageParams(r *http.Request) shared.Pagination {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return shared.Pagination{Page: page, PerPage: perPage}
}

// PathID parses a numeric {id} chi URL parameter.
func PathID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

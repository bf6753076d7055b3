package shared

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"c2ms/internal/requestctx"
	"c2ms/internal/transport/http/api"
)

// TotalCountHeader carries the unpaged size of a list response.
const TotalCountHeader = "X-Total-Count"

var ErrInvalidPage = errors.New("limit and offset must be non-negative integers")

// Page is a window over a list. Document collections are filtered in
// memory, so their pages slice the filtered result; audit and job runs page
// in SQL. A zero Limit means everything from Offset on.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads ?limit= and ?offset=, falling back to defaultLimit. An
// explicit limit above a positive maxLimit is capped.
func ParsePage(r *http.Request, defaultLimit, maxLimit int) (Page, error) {
	p := Page{Limit: defaultLimit}
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Page{}, ErrInvalidPage
		}
		p.Limit = v
	}
	if raw := strings.TrimSpace(q.Get("offset")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Page{}, ErrInvalidPage
		}
		p.Offset = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p, nil
}

// Apply returns the page of items and the unpaged total.
func Apply[T any](items []T, p Page) ([]T, int) {
	total := len(items)
	if p.Offset >= total {
		return []T{}, total
	}
	end := total
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end], total
}

// WritePage answers a list request with the requested page of items and
// the unpaged total in TotalCountHeader. It fails with 400 on a malformed
// page query.
func WritePage[T any](w http.ResponseWriter, r *http.Request, items []T, maxLimit int) {
	reqID := requestctx.GetRequestID(r.Context())
	p, err := ParsePage(r, 0, maxLimit)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_query", err.Error(), reqID)
		return
	}
	page, total := Apply(items, p)
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	api.Success(w, page, reqID)
}

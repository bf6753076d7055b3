package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"c2ms/internal/platform/period"
)

var ErrInvalidRange = errors.New("invalid date range")

// ParseDate accepts RFC3339 or YYYY-MM-DD; plain dates are read in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return period.ParseDate(value, loc)
}

// ParseRange reads the reporting window from the query string. In order of
// precedence: period=today|week|month|year, month=YYYY-MM, or start/end
// dates. Without any of them the window is the month to date.
func ParseRange(r *http.Request, now time.Time, loc *time.Location) (period.Range, error) {
	q := r.URL.Query()
	if name := strings.TrimSpace(q.Get("period")); name != "" {
		return period.Named(name, now, loc)
	}
	if month := strings.TrimSpace(q.Get("month")); month != "" {
		return period.ParseMonth(month, loc)
	}
	start, end := q.Get("start"), q.Get("end")
	if start == "" && end == "" {
		return period.Named("month", now, loc)
	}
	today := period.StartOfDay(now, loc)
	first, last := today, today
	if start != "" {
		parsed, err := ParseDate(start, loc)
		if err != nil {
			return period.Range{}, err
		}
		first = parsed
	}
	if end != "" {
		parsed, err := ParseDate(end, loc)
		if err != nil {
			return period.Range{}, err
		}
		last = parsed
	}
	if last.Before(first) {
		return period.Range{}, fmt.Errorf("%w: end must be on or after start", ErrInvalidRange)
	}
	rng := period.Days(first, last, loc)
	if err := rng.Bounded(); err != nil {
		return period.Range{}, fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}
	return rng, nil
}

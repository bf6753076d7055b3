// Package period models reporting windows over calendar days.
package period

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// MaxDays bounds any reporting window; two years leaves room for a
// year-over-year comparison.
const MaxDays = 731

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrTooLong       = fmt.Errorf("range is longer than %d days", MaxDays)
)

// Range is a half-open interval [Start, End).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days builds the range covering whole days from first through last inclusive.
func Days(first, last time.Time, loc *time.Location) Range {
	return Range{Start: StartOfDay(first, loc), End: StartOfDay(last, loc).AddDate(0, 0, 1)}
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// ContainsDate reports whether a YYYY-MM-DD string falls in the range.
func (r Range) ContainsDate(date string) bool {
	parsed, err := time.ParseInLocation(DateLayout, date, r.Start.Location())
	if err != nil {
		return false
	}
	return r.Contains(parsed)
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Previous is the window of equal length ending where r starts.
func (r Range) Previous() Range {
	return Range{Start: r.Start.Add(-r.Duration()), End: r.Start}
}

// DayCount is the number of calendar days covered. It is computed from Unix
// seconds so that very wide ranges do not overflow time.Duration.
func (r Range) DayCount() int64 {
	secs := r.End.Unix() - r.Start.Unix()
	return (secs + 12*3600) / (24 * 3600)
}

// Bounded returns ErrTooLong when r spans more than MaxDays.
func (r Range) Bounded() error {
	if r.DayCount() > MaxDays {
		return ErrTooLong
	}
	return nil
}

// EachDay lists the start of every day in the range.
func (r Range) EachDay() []time.Time {
	var out []time.Time
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func (r Range) LastDay() time.Time {
	return r.End.AddDate(0, 0, -1)
}

func (r Range) String() string {
	return r.Start.Format(DateLayout) + ".." + r.LastDay().Format(DateLayout)
}

func Month(year int, month time.Month, loc *time.Location) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// ParseMonth accepts YYYY-MM.
func ParseMonth(value string, loc *time.Location) (Range, error) {
	parsed, err := time.ParseInLocation(MonthLayout, value, loc)
	if err != nil {
		return Range{}, fmt.Errorf("period %q must be YYYY-MM: %w", value, err)
	}
	return Month(parsed.Year(), parsed.Month(), loc), nil
}

// Named resolves today, week (the last seven days), month (month to date)
// and year (year to date) relative to now.
func Named(name string, now time.Time, loc *time.Location) (Range, error) {
	today := StartOfDay(now, loc)
	switch name {
	case "today":
		return Days(today, today, loc), nil
	case "week":
		return Days(today.AddDate(0, 0, -6), today, loc), nil
	case "month":
		return Days(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc), today, loc), nil
	case "year":
		return Days(time.Date(today.Year(), 1, 1, 0, 0, 0, 0, loc), today, loc), nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, name)
}

// ParseDate accepts RFC3339 or YYYY-MM-DD in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.In(loc), nil
	}
	return time.ParseInLocation(DateLayout, value, loc)
}

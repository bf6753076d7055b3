package shared

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/platform/period"
	"c2ms/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field problems so a handler can report them in one 400.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	if reason = strings.TrimSpace(reason); reason != "" {
		v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
	}
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Enum checks value against allowed ignoring case and returns the canonical
// spelling. Empty values pass and come back empty.
func (v *Validator) Enum(field, value string, allowed []string, reason string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	for _, candidate := range allowed {
		if strings.EqualFold(trimmed, strings.TrimSpace(candidate)) {
			return candidate
		}
	}
	v.Add(field, reason)
	return trimmed
}

func (v *Validator) Date(field, raw string, loc *time.Location) (time.Time, bool) {
	parsed, err := ParseDate(strings.TrimSpace(raw), loc)
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

// OptionalDate parses raw when present; an empty value is the zero time.
func (v *Validator) OptionalDate(field, raw string, loc *time.Location) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	parsed, _ := v.Date(field, raw, loc)
	return parsed
}

// Month validates a YYYY-MM payroll or report period.
func (v *Validator) Month(field, raw string, loc *time.Location) (period.Range, bool) {
	r, err := period.ParseMonth(strings.TrimSpace(raw), loc)
	if err != nil {
		v.Add(field, "must be a month in YYYY-MM format")
		return period.Range{}, false
	}
	return r, true
}

// Timestamp parses an optional RFC3339 instant; empty yields the zero time.
func (v *Validator) Timestamp(field, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		v.Add(field, "must be an RFC3339 timestamp")
		return time.Time{}
	}
	return parsed
}

func (v *Validator) NonNegative(field string, value decimal.Decimal) {
	if value.IsNegative() {
		v.Add(field, "must not be negative")
	}
}

func (v *Validator) Positive(field string, value decimal.Decimal) {
	if !value.IsPositive() {
		v.Add(field, "must be greater than zero")
	}
}

// DateOrder flags end when it falls before start; unset dates are skipped.
func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		v.Add(endField, "must not be before "+startField)
	}
}

// Issues returns the collected problems ordered by field then reason, with
// exact duplicates removed.
func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := slices.Clone(v.issues)
	slices.SortStableFunc(out, func(a, b ValidationIssue) int {
		return cmp.Or(cmp.Compare(a.Field, b.Field), cmp.Compare(a.Reason, b.Reason))
	})
	return slices.Compact(out)
}

// Reject writes a 400 listing every issue and reports whether it did.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	issues := v.Issues()
	if len(issues) == 0 {
		return false
	}
	FailValidation(w, requestID, issues)
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, api.CodeValidation, "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}

package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, matching the stored documents.
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// Sum adds amounts; an empty input is zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Round rounds to whole rupiah.
func Round(value decimal.Decimal) decimal.Decimal {
	return value.Round(0)
}

// PercentChange returns (current-previous)/previous*100 rounded to two
// places. A zero previous value has no meaningful growth and yields nil.
func PercentChange(current, previous decimal.Decimal) *decimal.Decimal {
	if previous.IsZero() {
		return nil
	}
	change := current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(2)
	return &change
}

// Ratio returns part/whole*100 rounded to two places, or nil when whole is zero.
func Ratio(part, whole decimal.Decimal) *decimal.Decimal {
	if whole.IsZero() {
		return nil
	}
	ratio := part.Div(whole).Mul(hundred).Round(2)
	return &ratio
}

// Rupiah formats an amount as "Rp 1.250.000" for print layouts.
func Rupiah(value decimal.Decimal) string {
	rounded := value.Round(0)
	negative := rounded.IsNegative()
	digits := rounded.Abs().String()

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

package transactions

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"c2ms/internal/platform/money"
)

// ComputePPN applies rate to the amount of a taxable shipment, rounded to
// whole rupiah.
func ComputePPN(jumlah decimal.Decimal, taxable bool, rate decimal.Decimal) decimal.Decimal {
	if !taxable {
		return decimal.Zero
	}
	return money.Round(jumlah.Mul(rate))
}

// CanTransition reports whether status may move from one value to another.
// Cancellation is allowed from every active state.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	if !IsActive(from) {
		return false
	}
	if to == StatusDibatalkan {
		return true
	}
	fromRank, okFrom := statusRank[from]
	toRank, okTo := statusRank[to]
	return okFrom && okTo && toRank > fromRank
}

func Apply(items []Transaction, f Filter) []Transaction {
	needle := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Transaction, 0, len(items))
	for _, t := range items {
		if f.Range != nil && !f.Range.Contains(t.Tanggal) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Pelunasan != "" && t.Pelunasan != f.Pelunasan {
			continue
		}
		if f.ClientID != "" && t.ClientID != f.ClientID {
			continue
		}
		if needle != "" && !matchesText(t, needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortRecent orders by tanggal then creation time, newest first.
func SortRecent(items []Transaction) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Tanggal.Equal(items[j].Tanggal) {
			return items[i].Tanggal.After(items[j].Tanggal)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// Find resolves a query to one shipment: an exact STT match wins, otherwise
// the most recent shipment whose parties or route mention the query.
func Find(items []Transaction, query string) (Transaction, bool) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return Transaction{}, false
	}
	for _, t := range items {
		if strings.ToLower(t.NoSTT) == needle {
			return t, true
		}
	}
	candidates := make([]Transaction, 0)
	for _, t := range items {
		if matchesText(t, needle) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return Transaction{}, false
	}
	SortRecent(candidates)
	return candidates[0], true
}

func matchesText(t Transaction, needle string) bool {
	fields := []string{t.NoSTT, t.Pengirim.Nama, t.Penerima.Nama, t.Asal, t.Tujuan, t.ClientName, t.IsiBarang}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

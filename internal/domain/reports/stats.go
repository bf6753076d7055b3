package reports

import (
	"github.com/shopspring/decimal"

	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/period"
)

// TransactionStats summarizes shipments in a named window for quick answers.
type TransactionStats struct {
	Period       string          `json:"period"`
	Start        string          `json:"start"`
	End          string          `json:"end"`
	Count        int             `json:"count"`
	Cancelled    int             `json:"cancelled"`
	Revenue      decimal.Decimal `json:"revenue"`
	PPN          decimal.Decimal `json:"ppn"`
	AverageValue decimal.Decimal `json:"averageValue"`
	Settled      int             `json:"settled"`
	Unsettled    int             `json:"unsettled"`
	ByStatus     map[string]int  `json:"byStatus"`
	ByLayanan    map[string]int  `json:"byLayanan"`
}

func ComputeTransactionStats(txs []transactions.Transaction, name string, r period.Range) TransactionStats {
	s := TransactionStats{
		Period:    name,
		Start:     r.Start.Format(period.DateLayout),
		End:       r.LastDay().Format(period.DateLayout),
		ByStatus:  map[string]int{},
		ByLayanan: map[string]int{},
	}
	for _, t := range txs {
		if !r.Contains(t.Tanggal) {
			continue
		}
		s.ByStatus[t.Status]++
		if t.Status == transactions.StatusDibatalkan {
			s.Cancelled++
			continue
		}
		s.Count++
		s.ByLayanan[t.Layanan]++
		s.Revenue = s.Revenue.Add(t.Jumlah)
		s.PPN = s.PPN.Add(t.PPN)
		if transactions.IsSettled(t.Pelunasan) {
			s.Settled++
		} else {
			s.Unsettled++
		}
	}
	if s.Count > 0 {
		s.AverageValue = s.Revenue.Div(decimal.NewFromInt(int64(s.Count))).Round(0)
	}
	return s
}

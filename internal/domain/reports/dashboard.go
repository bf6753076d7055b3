package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"c2ms/internal/domain/expenses"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/money"
	"c2ms/internal/platform/period"
)

// unnamedClient groups shipments entered without a client or sender name.
const unnamedClient = "Tanpa Nama"

type ClientRevenue struct {
	Name      string          `json:"name"`
	Revenue   decimal.Decimal `json:"revenue"`
	Shipments int             `json:"shipments"`
}

type DailyPoint struct {
	Date      string          `json:"date"`
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	Shipments int             `json:"shipments"`
}

// Growth holds percentage changes against the preceding window of equal
// length. A nil value means the prior window had nothing to compare.
type Growth struct {
	Revenue   *decimal.Decimal `json:"revenue"`
	Expenses  *decimal.Decimal `json:"expenses"`
	Shipments *decimal.Decimal `json:"shipments"`
}

type Dashboard struct {
	Start              string          `json:"start"`
	End                string          `json:"end"`
	Revenue            decimal.Decimal `json:"revenue"`
	Expenses           decimal.Decimal `json:"expenses"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	ActiveShipments    int             `json:"activeShipments"`
	TransactionCount   int             `json:"transactionCount"`
	CancelledCount     int             `json:"cancelledCount"`
	TopClients         []ClientRevenue `json:"topClients"`
	StatusHistogram    map[string]int  `json:"statusHistogram"`
	PelunasanHistogram map[string]int  `json:"pelunasanHistogram"`
	Growth             Growth          `json:"growth"`
	Daily              []DailyPoint    `json:"daily"`
}

// windowTotals are the figures compared between a window and its predecessor.
type windowTotals struct {
	revenue   decimal.Decimal
	expenses  decimal.Decimal
	shipments int
}

// ComputeDashboard aggregates shipments and expenses dated inside r.
// Revenue and client rankings skip cancelled shipments; histograms count
// every shipment in the window. topN <= 0 keeps every client.
func ComputeDashboard(txs []transactions.Transaction, exps []expenses.Expense, r period.Range, topN int) Dashboard {
	d := Dashboard{
		Start:              r.Start.Format(period.DateLayout),
		End:                r.LastDay().Format(period.DateLayout),
		StatusHistogram:    map[string]int{},
		PelunasanHistogram: map[string]int{},
		TopClients:         []ClientRevenue{},
	}
	for _, s := range transactions.Statuses {
		d.StatusHistogram[s] = 0
	}
	for _, p := range transactions.Pelunasans {
		d.PelunasanHistogram[p] = 0
	}

	eachDay := r.EachDay()
	d.Daily = make([]DailyPoint, len(eachDay))
	days := make(map[string]int, len(eachDay))
	for i, day := range eachDay {
		key := day.Format(period.DateLayout)
		d.Daily[i].Date = key
		days[key] = i
	}

	byClient := map[string]*ClientRevenue{}
	for _, t := range txs {
		if !r.Contains(t.Tanggal) {
			continue
		}
		d.StatusHistogram[t.Status]++
		d.PelunasanHistogram[t.Pelunasan]++
		if t.Status == transactions.StatusDibatalkan {
			d.CancelledCount++
			continue
		}
		d.TransactionCount++
		d.Revenue = d.Revenue.Add(t.Jumlah)
		if transactions.IsActive(t.Status) {
			d.ActiveShipments++
		}

		name := clientLabel(t)
		c, ok := byClient[name]
		if !ok {
			c = &ClientRevenue{Name: name}
			byClient[name] = c
		}
		c.Revenue = c.Revenue.Add(t.Jumlah)
		c.Shipments++

		if i, ok := days[t.Tanggal.In(r.Start.Location()).Format(period.DateLayout)]; ok {
			d.Daily[i].Revenue = d.Daily[i].Revenue.Add(t.Jumlah)
			d.Daily[i].Shipments++
		}
	}

	for _, e := range exps {
		if !r.Contains(e.Tanggal) {
			continue
		}
		d.Expenses = d.Expenses.Add(e.Jumlah)
		if i, ok := days[e.Tanggal.In(r.Start.Location()).Format(period.DateLayout)]; ok {
			d.Daily[i].Expenses = d.Daily[i].Expenses.Add(e.Jumlah)
		}
	}
	d.NetProfit = d.Revenue.Sub(d.Expenses)

	for _, c := range byClient {
		d.TopClients = append(d.TopClients, *c)
	}
	sort.Slice(d.TopClients, func(i, j int) bool {
		if !d.TopClients[i].Revenue.Equal(d.TopClients[j].Revenue) {
			return d.TopClients[i].Revenue.GreaterThan(d.TopClients[j].Revenue)
		}
		return d.TopClients[i].Name < d.TopClients[j].Name
	})
	if topN > 0 && len(d.TopClients) > topN {
		d.TopClients = d.TopClients[:topN]
	}

	prev := totalsIn(txs, exps, r.Previous())
	d.Growth = Growth{
		Revenue:   money.PercentChange(d.Revenue, prev.revenue),
		Expenses:  money.PercentChange(d.Expenses, prev.expenses),
		Shipments: money.PercentChange(decimal.NewFromInt(int64(d.TransactionCount)), decimal.NewFromInt(int64(prev.shipments))),
	}
	return d
}

func totalsIn(txs []transactions.Transaction, exps []expenses.Expense, r period.Range) windowTotals {
	var w windowTotals
	for _, t := range txs {
		if r.Contains(t.Tanggal) && t.Status != transactions.StatusDibatalkan {
			w.revenue = w.revenue.Add(t.Jumlah)
			w.shipments++
		}
	}
	for _, e := range exps {
		if r.Contains(e.Tanggal) {
			w.expenses = w.expenses.Add(e.Jumlah)
		}
	}
	return w
}

func clientLabel(t transactions.Transaction) string {
	if name := strings.TrimSpace(t.ClientName); name != "" {
		return name
	}
	if name := strings.TrimSpace(t.Pengirim.Nama); name != "" {
		return name
	}
	return unnamedClient
}

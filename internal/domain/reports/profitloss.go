package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"c2ms/internal/domain/expenses"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/money"
	"c2ms/internal/platform/period"
)

type MonthlyResult struct {
	Period    string          `json:"period"`
	Revenue   decimal.Decimal `json:"revenue"`
	COGS      decimal.Decimal `json:"cogs"`
	OpEx      decimal.Decimal `json:"opex"`
	NetProfit decimal.Decimal `json:"netProfit"`
}

type CategoryTotal struct {
	Kategori string          `json:"kategori"`
	COGS     bool            `json:"cogs"`
	Total    decimal.Decimal `json:"total"`
}

// ProfitLoss is a cash-basis statement: revenue counts settled shipments
// only and unsettled ones are reported as receivables.
type ProfitLoss struct {
	Start        string           `json:"start"`
	End          string           `json:"end"`
	Revenue      decimal.Decimal  `json:"revenue"`
	Receivables  decimal.Decimal  `json:"receivables"`
	COGS         decimal.Decimal  `json:"cogs"`
	GrossProfit  decimal.Decimal  `json:"grossProfit"`
	OpEx         decimal.Decimal  `json:"opex"`
	NetProfit    decimal.Decimal  `json:"netProfit"`
	GrossMargin  *decimal.Decimal `json:"grossMargin"`
	NetMargin    *decimal.Decimal `json:"netMargin"`
	PPNCollected decimal.Decimal  `json:"ppnCollected"`
	Categories   []CategoryTotal  `json:"categories"`
	Months       []MonthlyResult  `json:"months"`
}

func ComputeProfitLoss(txs []transactions.Transaction, exps []expenses.Expense, r period.Range) ProfitLoss {
	pl := ProfitLoss{
		Start:      r.Start.Format(period.DateLayout),
		End:        r.LastDay().Format(period.DateLayout),
		Categories: []CategoryTotal{},
		Months:     []MonthlyResult{},
	}
	loc := r.Start.Location()
	months := map[string]*MonthlyResult{}
	month := func(key string) *MonthlyResult {
		m, ok := months[key]
		if !ok {
			m = &MonthlyResult{Period: key}
			months[key] = m
		}
		return m
	}

	for _, t := range txs {
		if !r.Contains(t.Tanggal) || t.Status == transactions.StatusDibatalkan {
			continue
		}
		if !transactions.IsSettled(t.Pelunasan) {
			pl.Receivables = pl.Receivables.Add(t.Jumlah)
			continue
		}
		pl.Revenue = pl.Revenue.Add(t.Jumlah)
		if t.KenaPajak {
			pl.PPNCollected = pl.PPNCollected.Add(t.PPN)
		}
		m := month(t.Tanggal.In(loc).Format(period.MonthLayout))
		m.Revenue = m.Revenue.Add(t.Jumlah)
	}

	categories := map[string]decimal.Decimal{}
	for _, e := range exps {
		if !r.Contains(e.Tanggal) {
			continue
		}
		categories[e.Kategori] = categories[e.Kategori].Add(e.Jumlah)
		m := month(e.Tanggal.In(loc).Format(period.MonthLayout))
		if expenses.IsCOGS(e.Kategori) {
			pl.COGS = pl.COGS.Add(e.Jumlah)
			m.COGS = m.COGS.Add(e.Jumlah)
		} else {
			pl.OpEx = pl.OpEx.Add(e.Jumlah)
			m.OpEx = m.OpEx.Add(e.Jumlah)
		}
	}

	pl.GrossProfit = pl.Revenue.Sub(pl.COGS)
	pl.NetProfit = pl.GrossProfit.Sub(pl.OpEx)
	pl.GrossMargin = money.Ratio(pl.GrossProfit, pl.Revenue)
	pl.NetMargin = money.Ratio(pl.NetProfit, pl.Revenue)

	for k, total := range categories {
		pl.Categories = append(pl.Categories, CategoryTotal{Kategori: k, COGS: expenses.IsCOGS(k), Total: total})
	}
	sort.Slice(pl.Categories, func(i, j int) bool {
		if !pl.Categories[i].Total.Equal(pl.Categories[j].Total) {
			return pl.Categories[i].Total.GreaterThan(pl.Categories[j].Total)
		}
		return pl.Categories[i].Kategori < pl.Categories[j].Kategori
	})

	for _, m := range months {
		m.NetProfit = m.Revenue.Sub(m.COGS).Sub(m.OpEx)
		pl.Months = append(pl.Months, *m)
	}
	sort.Slice(pl.Months, func(i, j int) bool { return pl.Months[i].Period < pl.Months[j].Period })
	return pl
}

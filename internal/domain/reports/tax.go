package reports

import (
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/money"
	"c2ms/internal/platform/pdf"
	"c2ms/internal/platform/period"
)

type TaxRow struct {
	TransactionID string          `json:"transactionId"`
	NoSTT         string          `json:"noSTT"`
	Tanggal       string          `json:"tanggal"`
	ClientName    string          `json:"clientName"`
	NPWP          string          `json:"npwp,omitempty"`
	DPP           decimal.Decimal `json:"dpp"`
	PPN           decimal.Decimal `json:"ppn"`
	Total         decimal.Decimal `json:"total"`
	Pelunasan     string          `json:"pelunasan"`
}

// TaxReport lists taxable shipments with the PPN stored when they were
// entered. Nothing is recomputed from the current rate.
type TaxReport struct {
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Rows     []TaxRow        `json:"rows"`
	Count    int             `json:"count"`
	TotalDPP decimal.Decimal `json:"totalDPP"`
	TotalPPN decimal.Decimal `json:"totalPPN"`
	Total    decimal.Decimal `json:"total"`
}

type TaxCSVRow struct {
	NoSTT      string `csv:"no_stt"`
	Tanggal    string `csv:"tanggal"`
	ClientName string `csv:"klien"`
	NPWP       string `csv:"npwp"`
	DPP        string `csv:"dpp"`
	PPN        string `csv:"ppn"`
	Total      string `csv:"total"`
	Pelunasan  string `csv:"pelunasan"`
}

// ComputeTax selects taxable, non-cancelled shipments dated inside r.
// npwp maps client ids to their tax numbers and may be nil.
func ComputeTax(txs []transactions.Transaction, npwp map[string]string, r period.Range) TaxReport {
	rep := TaxReport{
		Start: r.Start.Format(period.DateLayout),
		End:   r.LastDay().Format(period.DateLayout),
		Rows:  []TaxRow{},
	}
	loc := r.Start.Location()
	for _, t := range txs {
		if !t.KenaPajak || t.Status == transactions.StatusDibatalkan || !r.Contains(t.Tanggal) {
			continue
		}
		rep.Rows = append(rep.Rows, TaxRow{
			TransactionID: t.ID,
			NoSTT:         t.NoSTT,
			Tanggal:       t.Tanggal.In(loc).Format(period.DateLayout),
			ClientName:    clientLabel(t),
			NPWP:          npwp[t.ClientID],
			DPP:           t.Jumlah,
			PPN:           t.PPN,
			Total:         t.Total(),
			Pelunasan:     t.Pelunasan,
		})
		rep.TotalDPP = rep.TotalDPP.Add(t.Jumlah)
		rep.TotalPPN = rep.TotalPPN.Add(t.PPN)
	}
	sort.SliceStable(rep.Rows, func(i, j int) bool {
		if rep.Rows[i].Tanggal != rep.Rows[j].Tanggal {
			return rep.Rows[i].Tanggal < rep.Rows[j].Tanggal
		}
		return rep.Rows[i].NoSTT < rep.Rows[j].NoSTT
	})
	rep.Count = len(rep.Rows)
	rep.Total = rep.TotalDPP.Add(rep.TotalPPN)
	return rep
}

func (rep TaxReport) CSVRows() []TaxCSVRow {
	out := make([]TaxCSVRow, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		out = append(out, TaxCSVRow{
			NoSTT:      r.NoSTT,
			Tanggal:    r.Tanggal,
			ClientName: r.ClientName,
			NPWP:       r.NPWP,
			DPP:        r.DPP.StringFixed(0),
			PPN:        r.PPN.StringFixed(0),
			Total:      r.Total.StringFixed(0),
			Pelunasan:  r.Pelunasan,
		})
	}
	return out
}

var taxColumns = []pdf.Column{
	{Title: "Tanggal", Width: 22},
	{Title: "No STT", Width: 30},
	{Title: "Klien", Width: 46},
	{Title: "DPP", Width: 30, Align: "R"},
	{Title: "PPN", Width: 26, Align: "R"},
	{Title: "Total", Width: 32, Align: "R"},
}

func RenderTax(w io.Writer, profile config.Profile, rep TaxReport) error {
	doc := pdf.New(profile, "Laporan PPN Keluaran")
	doc.Field("Periode", rep.Start+" s/d "+rep.End)
	doc.Field("Jumlah transaksi", decimal.NewFromInt(int64(rep.Count)).String())
	doc.Gap()

	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, []string{r.Tanggal, r.NoSTT, r.ClientName, money.Rupiah(r.DPP), money.Rupiah(r.PPN), money.Rupiah(r.Total)})
	}
	doc.Table(taxColumns, rows)
	doc.Gap()
	doc.Total("Total DPP", money.Rupiah(rep.TotalDPP), false)
	doc.Total("Total PPN", money.Rupiah(rep.TotalPPN), false)
	doc.Total("Total", money.Rupiah(rep.Total), true)
	if !profile.PKP {
		doc.Note("Perusahaan belum berstatus PKP.")
	}
	return doc.WriteTo(w)
}

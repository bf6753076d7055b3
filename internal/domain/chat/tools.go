package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"c2ms/internal/domain/reports"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/period"
)

const (
	ToolDashboardSummary   = "get_dashboard_summary"
	ToolTransactionStats   = "get_transaction_stats"
	ToolSearchTransaction  = "search_transaction"
	ToolRecentTransactions = "get_recent_transactions"
)

const defaultRecentLimit = 5

// SystemPrompt frames the assistant for the back office staff.
const SystemPrompt = `Anda adalah asisten C2-MS untuk perusahaan ekspedisi kargo.
Jawab dalam Bahasa Indonesia dengan singkat dan jelas.
Gunakan tool yang tersedia untuk data transaksi, pendapatan dan pengiriman; jangan mengarang angka.
Tampilkan nominal dalam format Rupiah.`

// Tools binds the four read-only tools to the report and transaction services.
func Tools(reportSvc *reports.Service, txSvc *transactions.Service, now func() time.Time) []Tool {
	if now == nil {
		now = time.Now
	}
	loc := reportSvc.Location()
	return []Tool{
		{
			Spec: ToolSpec{
				Name:        ToolDashboardSummary,
				Description: "Ringkasan dashboard: pendapatan, pengeluaran, laba bersih, pengiriman aktif dan klien teratas dalam rentang tanggal.",
				Params: []Param{
					{Name: "startDate", Type: "string", Description: "Tanggal awal YYYY-MM-DD, default awal bulan ini"},
					{Name: "endDate", Type: "string", Description: "Tanggal akhir YYYY-MM-DD, default hari ini"},
				},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				r, err := dateRange(args, now(), loc)
				if err != nil {
					return nil, err
				}
				d, err := reportSvc.Dashboard(ctx, r)
				if err != nil {
					return nil, err
				}
				return dashboardSummary(d), nil
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolTransactionStats,
				Description: "Statistik transaksi untuk periode bernama.",
				Params: []Param{
					{Name: "period", Type: "string", Description: "Periode", Enum: []string{"today", "week", "month", "year"}, Required: true},
				},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				name := argString(args, "period")
				if name == "" {
					name = "month"
				}
				return reportSvc.TransactionStats(ctx, name)
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolSearchTransaction,
				Description: "Cari satu transaksi berdasarkan nomor STT, nama pengirim, penerima atau tujuan.",
				Params: []Param{
					{Name: "query", Type: "string", Description: "Nomor STT atau kata kunci", Required: true},
				},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				query := argString(args, "query")
				if query == "" {
					return nil, errors.New("query is required")
				}
				t, err := txSvc.Find(ctx, query)
				if err != nil {
					return nil, err
				}
				return transactionSummary(*t, loc), nil
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolRecentTransactions,
				Description: "Daftar transaksi terbaru.",
				Params: []Param{
					{Name: "limit", Type: "integer", Description: "Jumlah transaksi, default 5, maksimal 50"},
				},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				limit := argInt(args, "limit", defaultRecentLimit)
				items, err := txSvc.Recent(ctx, limit)
				if err != nil {
					return nil, err
				}
				out := make([]map[string]any, 0, len(items))
				for _, t := range items {
					out = append(out, transactionSummary(t, loc))
				}
				return map[string]any{"count": len(out), "transactions": out}, nil
			},
		},
	}
}

func dateRange(args map[string]any, now time.Time, loc *time.Location) (period.Range, error) {
	today := period.StartOfDay(now, loc)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	end := today
	if v := argString(args, "startDate"); v != "" {
		t, err := period.ParseDate(v, loc)
		if err != nil {
			return period.Range{}, fmt.Errorf("invalid startDate %q", v)
		}
		start = t
	}
	if v := argString(args, "endDate"); v != "" {
		t, err := period.ParseDate(v, loc)
		if err != nil {
			return period.Range{}, fmt.Errorf("invalid endDate %q", v)
		}
		end = t
	}
	if end.Before(start) {
		return period.Range{}, errors.New("endDate is before startDate")
	}
	rng := period.Days(start, end, loc)
	if err := rng.Bounded(); err != nil {
		return period.Range{}, err
	}
	return rng, nil
}

func dashboardSummary(d reports.Dashboard) map[string]any {
	return map[string]any{
		"start":            d.Start,
		"end":              d.End,
		"revenue":          d.Revenue,
		"expenses":         d.Expenses,
		"netProfit":        d.NetProfit,
		"activeShipments":  d.ActiveShipments,
		"transactionCount": d.TransactionCount,
		"cancelledCount":   d.CancelledCount,
		"topClients":       d.TopClients,
		"statusHistogram":  d.StatusHistogram,
		"growth":           d.Growth,
	}
}

func transactionSummary(t transactions.Transaction, loc *time.Location) map[string]any {
	return map[string]any{
		"noSTT":     t.NoSTT,
		"tanggal":   t.Tanggal.In(loc).Format(period.DateLayout),
		"klien":     t.ClientName,
		"pengirim":  t.Pengirim.Nama,
		"penerima":  t.Penerima.Nama,
		"asal":      t.Asal,
		"tujuan":    t.Tujuan,
		"layanan":   t.Layanan,
		"jumlah":    t.Jumlah,
		"ppn":       t.PPN,
		"status":    t.Status,
		"pelunasan": t.Pelunasan,
	}
}

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

// argInt accepts JSON numbers and numeric strings.
func argInt(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

package transactions

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"c2ms/internal/platform/period"
)

func TestComputePPN(t *testing.T) {
	rate := decimal.RequireFromString("0.011")
	cases := []struct {
		name    string
		jumlah  int64
		taxable bool
		want    int64
	}{
		{"taxable", 1000000, true, 11000},
		{"rounds half up", 150, true, 2},
		{"not taxable", 1000000, false, 0},
		{"zero amount", 0, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputePPN(decimal.NewFromInt(tc.jumlah), tc.taxable, rate)
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "got %s", got)
		})
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusDiproses, true},
		{StatusPending, StatusTerkirim, true},
		{StatusDalamPerjalanan, StatusDiproses, false},
		{StatusDiproses, StatusDibatalkan, true},
		{StatusTerkirim, StatusDibatalkan, false},
		{StatusDibatalkan, StatusPending, false},
		{StatusTerkirim, StatusTerkirim, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplyFilters(t *testing.T) {
	loc := time.UTC
	march := period.Month(2026, time.March, loc)
	items := []Transaction{
		{NoSTT: "STT-2603-00001", Tanggal: time.Date(2026, 3, 2, 0, 0, 0, 0, loc), Status: StatusPending, Pelunasan: PelunasanCash, ClientID: "c1", Tujuan: "Makassar"},
		{NoSTT: "STT-2603-00002", Tanggal: time.Date(2026, 3, 9, 0, 0, 0, 0, loc), Status: StatusTerkirim, Pelunasan: PelunasanPending, ClientID: "c2", Tujuan: "Ambon"},
		{NoSTT: "STT-2602-00009", Tanggal: time.Date(2026, 2, 27, 0, 0, 0, 0, loc), Status: StatusPending, Pelunasan: PelunasanCash, ClientID: "c1", Tujuan: "Makassar"},
	}

	assert.Len(t, Apply(items, Filter{Range: &march}), 2)
	assert.Len(t, Apply(items, Filter{ClientID: "c1"}), 2)
	assert.Len(t, Apply(items, Filter{Range: &march, Pelunasan: PelunasanCash}), 1)
	assert.Len(t, Apply(items, Filter{Status: StatusTerkirim}), 1)
	assert.Len(t, Apply(items, Filter{Query: "makassar"}), 2)
	assert.Empty(t, Apply(nil, Filter{}))
}

func TestFindPrefersExactSTT(t *testing.T) {
	items := []Transaction{
		{NoSTT: "STT-2603-00001", Tanggal: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Penerima: Party{Nama: "Ani"}},
		{NoSTT: "STT-2603-00002", Tanggal: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), Catatan: "STT-2603-00001 replacement", Penerima: Party{Nama: "Ani"}},
	}

	got, ok := Find(items, "stt-2603-00001")
	assert.True(t, ok)
	assert.Equal(t, "STT-2603-00001", got.NoSTT)

	got, ok = Find(items, "ani")
	assert.True(t, ok)
	assert.Equal(t, "STT-2603-00002", got.NoSTT, "most recent text match wins")

	_, ok = Find(items, "nobody")
	assert.False(t, ok)
	_, ok = Find(items, "  ")
	assert.False(t, ok)
}

func TestSortRecent(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []Transaction{
		{NoSTT: "a", Tanggal: base},
		{NoSTT: "b", Tanggal: base.AddDate(0, 0, 2)},
		{NoSTT: "c", Tanggal: base.AddDate(0, 0, 1)},
	}
	SortRecent(items)
	assert.Equal(t, []string{"b", "c", "a"}, []string{items[0].NoSTT, items[1].NoSTT, items[2].NoSTT})
}

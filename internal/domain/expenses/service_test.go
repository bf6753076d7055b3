package expenses

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/platform/csvexport"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/period"
)

func TestIsCOGS(t *testing.T) {
	for _, k := range []string{KategoriBBM, KategoriTol, KategoriPelabuhan, KategoriBongkarMuat, KategoriSewaArmada, KategoriPerawatanArmada, KategoriEkspedisi} {
		assert.True(t, IsCOGS(k), k)
	}
	for _, k := range []string{KategoriGaji, KategoriSewaKantor, KategoriListrik, KategoriLainLain, "entertainment"} {
		assert.False(t, IsCOGS(k), k)
	}
}

func TestCreateDefaultsAndFilter(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemory())

	_, err := svc.Create(ctx, Input{Tanggal: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Kategori: "BBM", Jumlah: decimal.NewFromInt(500000), FleetID: "f1"})
	require.NoError(t, err)
	e, err := svc.Create(ctx, Input{Tanggal: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), Jumlah: decimal.NewFromInt(75000)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Tanggal: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Kategori: KategoriListrik, Jumlah: decimal.NewFromInt(1)})
	require.NoError(t, err)

	assert.Equal(t, KategoriLainLain, e.Kategori)
	assert.Equal(t, MetodeCash, e.Metode)

	march := period.Month(2026, time.March, time.UTC)
	inMarch, err := svc.List(ctx, Filter{Range: &march})
	require.NoError(t, err)
	require.Len(t, inMarch, 2)
	assert.Equal(t, KategoriLainLain, inMarch[0].Kategori, "newest first")

	fuel, err := svc.List(ctx, Filter{Kategori: KategoriBBM, FleetID: "f1"})
	require.NoError(t, err)
	assert.Len(t, fuel, 1)
}

func TestPayrollExpenseIsLocked(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemory())
	e, err := svc.Create(ctx, Input{Kategori: KategoriGaji, Jumlah: decimal.NewFromInt(10), PayrollID: "2026-03"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, e.ID, Input{Kategori: KategoriGaji})
	assert.ErrorIs(t, err, ErrPayrollExpense)
	assert.ErrorIs(t, svc.Delete(ctx, e.ID), ErrPayrollExpense)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), ErrNotFound)
}

func TestForPayrollIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemory())
	in := Input{Kategori: KategoriGaji, Jumlah: decimal.NewFromInt(7150000), PayrollID: "2026-03"}

	first, err := svc.ForPayroll(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, PayrollExpenseID("2026-03"), first.ID)

	again, err := svc.ForPayroll(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	other, err := svc.ForPayroll(ctx, Input{Kategori: KategoriGaji, Jumlah: decimal.NewFromInt(1), PayrollID: "2026-04"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ForPayroll(ctx, Input{Kategori: KategoriGaji})
	assert.Error(t, err)
}

func TestExportRowsGroupCategories(t *testing.T) {
	rows := ExportRows([]Expense{
		{Tanggal: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Kategori: KategoriTol, Jumlah: decimal.NewFromInt(20000), Metode: MetodeCash},
		{Tanggal: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), Kategori: KategoriListrik, Jumlah: decimal.NewFromInt(90000), Metode: MetodeTransfer},
	})
	var buf bytes.Buffer
	require.NoError(t, csvexport.Write(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "tanggal,kategori,kelompok,keterangan,jumlah,metode", lines[0])
	assert.Equal(t, "2026-03-02,tol,COGS,,20000,Cash", lines[1])
	assert.Equal(t, "2026-03-03,listrik,OpEx,,90000,Transfer", lines[2])
}

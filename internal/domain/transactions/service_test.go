package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/domain/clients"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/requestctx"
)

func newService(t *testing.T) (*Service, *clients.Service) {
	t.Helper()
	backend := docstore.NewMemory()
	clientSvc := clients.NewService(backend)
	return NewService(backend, clientSvc, decimal.RequireFromString("0.011")), clientSvc
}

func details(day int, jumlah int64, taxable bool) Details {
	return Details{
		Tanggal:   time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC),
		Pengirim:  Party{Nama: " Budi "},
		Penerima:  Party{Nama: "Ani"},
		Asal:      "Surabaya",
		Tujuan:    "Makassar",
		Layanan:   "LAUT",
		Koli:      2,
		Berat:     decimal.NewFromInt(40),
		Jumlah:    decimal.NewFromInt(jumlah),
		KenaPajak: taxable,
	}
}

func TestCreateAssignsNumberTaxAndDefaults(t *testing.T) {
	svc, _ := newService(t)
	ctx := requestctx.WithActor(context.Background(), "kasir@c2.local")

	first, err := svc.Create(ctx, details(3, 1000000, true))
	require.NoError(t, err)
	second, err := svc.Create(ctx, details(4, 200000, false))
	require.NoError(t, err)

	assert.Equal(t, "STT-2603-00001", first.NoSTT)
	assert.Equal(t, "STT-2603-00002", second.NoSTT)
	assert.True(t, first.PPN.Equal(decimal.NewFromInt(11000)))
	assert.True(t, second.PPN.IsZero())
	assert.Equal(t, StatusPending, first.Status)
	assert.Equal(t, PelunasanPending, first.Pelunasan)
	assert.Equal(t, LayananLaut, first.Layanan)
	assert.Equal(t, "Budi", first.ClientName)
	assert.Equal(t, "kasir@c2.local", first.CreatedBy)
}

func TestCreateUsesClientName(t *testing.T) {
	svc, clientSvc := newService(t)
	ctx := context.Background()
	c, err := clientSvc.Create(ctx, clients.Input{Nama: "PT Samudra"})
	require.NoError(t, err)

	d := details(3, 5000, false)
	d.ClientID = c.ID
	tx, err := svc.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "PT Samudra", tx.ClientName)

	d.ClientID = "missing"
	_, err = svc.Create(ctx, d)
	assert.ErrorIs(t, err, clients.ErrNotFound)
}

func TestStatusLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	tx, err := svc.Create(ctx, details(3, 5000, false))
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, tx.ID, StatusTerkirim)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, tx.ID, StatusDiproses)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Cancel(ctx, tx.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.SetStatus(ctx, tx.ID, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancelGuardsInvoicedShipments(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	tx, err := svc.Create(ctx, details(3, 5000, false))
	require.NoError(t, err)

	_, err = svc.LinkInvoice(ctx, tx.ID, "inv-1")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, tx.ID)
	assert.ErrorIs(t, err, ErrInvoiced)
	assert.ErrorIs(t, svc.Delete(ctx, tx.ID), ErrInvoiced)
	_, err = svc.LinkInvoice(ctx, tx.ID, "inv-2")
	assert.ErrorIs(t, err, ErrInvoiced)

	require.NoError(t, svc.UnlinkInvoice(ctx, tx.ID, "inv-1"))
	cancelled, err := svc.Cancel(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDibatalkan, cancelled.Status)

	_, err = svc.Update(ctx, tx.ID, details(3, 1, false))
	assert.ErrorIs(t, err, ErrCancelled)
	_, err = svc.AssignVoyage(ctx, tx.ID, "v1")
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestUpdateKeepsInvoicedAmounts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	tx, err := svc.Create(ctx, details(3, 100000, true))
	require.NoError(t, err)
	_, err = svc.LinkInvoice(ctx, tx.ID, "inv-1")
	require.NoError(t, err)

	_, err = svc.Update(ctx, tx.ID, details(3, 1, true))
	assert.ErrorIs(t, err, ErrInvoiced)
	_, err = svc.Update(ctx, tx.ID, details(3, 100000, false))
	assert.ErrorIs(t, err, ErrInvoiced)
	moved := details(3, 100000, true)
	moved.ClientID = "other-client"
	_, err = svc.Update(ctx, tx.ID, moved)
	assert.ErrorIs(t, err, ErrInvoiced)

	stored, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.Jumlah.Equal(decimal.NewFromInt(100000)))
	assert.True(t, stored.PPN.Equal(decimal.NewFromInt(1100)))

	d := details(4, 100000, true)
	d.Catatan = "diantar ke gudang belakang"
	updated, err := svc.Update(ctx, tx.ID, d)
	require.NoError(t, err)
	assert.Equal(t, "diantar ke gudang belakang", updated.Catatan)
	assert.True(t, updated.PPN.Equal(decimal.NewFromInt(1100)))
	assert.Equal(t, "inv-1", updated.InvoiceID)
}

func TestUpdateRecomputesPPNAndKeepsNumber(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	tx, err := svc.Create(ctx, details(3, 100000, false))
	require.NoError(t, err)

	d := details(5, 200000, true)
	d.Pelunasan = PelunasanTransfer
	updated, err := svc.Update(ctx, tx.ID, d)
	require.NoError(t, err)
	assert.Equal(t, tx.NoSTT, updated.NoSTT)
	assert.True(t, updated.PPN.Equal(decimal.NewFromInt(2200)))
	assert.Equal(t, PelunasanTransfer, updated.Pelunasan)

	d.Pelunasan = "Cek"
	_, err = svc.Update(ctx, tx.ID, d)
	assert.ErrorIs(t, err, ErrInvalidPelunasan)
}

func TestVoyageLinking(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	tx, err := svc.Create(ctx, details(3, 5000, false))
	require.NoError(t, err)

	_, err = svc.AssignVoyage(ctx, tx.ID, "v1")
	require.NoError(t, err)
	_, err = svc.AssignVoyage(ctx, tx.ID, "v2")
	assert.ErrorIs(t, err, ErrOnVoyage)
	require.NoError(t, svc.Depart(ctx, tx.ID))

	got, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDalamPerjalanan, got.Status)

	require.NoError(t, svc.ReleaseVoyage(ctx, tx.ID, "v1"))
	got, err = svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Empty(t, got.VoyageID)
}

func TestRecentAndFind(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for day := 1; day <= 12; day++ {
		_, err := svc.Create(ctx, details(day, int64(day*1000), false))
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, 12, recent[0].Tanggal.Day())

	capped, err := svc.Recent(ctx, 500)
	require.NoError(t, err)
	assert.Len(t, capped, 12)

	found, err := svc.Find(ctx, recent[3].NoSTT)
	require.NoError(t, err)
	assert.Equal(t, recent[3].ID, found.ID)

	_, err = svc.Find(ctx, "STT-0000-00000")
	assert.ErrorIs(t, err, ErrNotFound)
}

package voyages

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/domain/clients"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/docstore"
)

func setup(t *testing.T) (*Service, *transactions.Service, []string) {
	t.Helper()
	ctx := context.Background()
	backend := docstore.NewMemory()
	txSvc := transactions.NewService(backend, clients.NewService(backend), decimal.Zero)
	var ids []string
	for i := 0; i < 3; i++ {
		tx, err := txSvc.Create(ctx, transactions.Details{
			Tanggal: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Jumlah:  decimal.NewFromInt(1000),
		})
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}
	return NewService(backend, txSvc), txSvc, ids
}

func voyageInput(etd time.Time) Input {
	return Input{Kode: "kmp-01", Moda: ModaKapal, Asal: "Surabaya", Tujuan: "Makassar", ETD: etd, ETA: etd.Add(48 * time.Hour)}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusTerjadwal, StatusBerangkat))
	assert.True(t, CanTransition(StatusTerjadwal, StatusBatal))
	assert.True(t, CanTransition(StatusBerangkat, StatusTiba))
	assert.False(t, CanTransition(StatusBerangkat, StatusBatal))
	assert.False(t, CanTransition(StatusTiba, StatusTerjadwal))
	assert.False(t, CanTransition(StatusBatal, StatusBerangkat))
}

func TestCreateValidatesSchedule(t *testing.T) {
	svc, _, _ := setup(t)
	etd := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	in := voyageInput(etd)
	in.ETA = etd.Add(-time.Hour)
	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrScheduleOrder)

	v, err := svc.Create(context.Background(), voyageInput(etd))
	require.NoError(t, err)
	assert.Equal(t, "KMP-01", v.Kode)
	assert.Equal(t, StatusTerjadwal, v.Status)
}

func TestDepartureMovesShipmentsInTransit(t *testing.T) {
	svc, txSvc, ids := setup(t)
	ctx := context.Background()
	v, err := svc.Create(ctx, voyageInput(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	v, err = svc.Assign(ctx, v.ID, []string{ids[0], ids[1], ids[0]})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[1]}, v.TransactionIDs)

	other, err := svc.Create(ctx, voyageInput(time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = svc.Assign(ctx, other.ID, []string{ids[0]})
	assert.ErrorIs(t, err, transactions.ErrOnVoyage)

	v, err = svc.Unassign(ctx, v.ID, ids[1])
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0]}, v.TransactionIDs)
	_, err = svc.Unassign(ctx, v.ID, ids[2])
	assert.ErrorIs(t, err, ErrNotAssigned)

	_, err = svc.SetStatus(ctx, v.ID, StatusBerangkat)
	require.NoError(t, err)
	tx, err := txSvc.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusDalamPerjalanan, tx.Status)
	freed, err := txSvc.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusPending, freed.Status)
	assert.Empty(t, freed.VoyageID)

	_, err = svc.Assign(ctx, v.ID, []string{ids[2]})
	assert.ErrorIs(t, err, ErrNotScheduled)
	_, err = svc.SetStatus(ctx, v.ID, StatusBatal)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, svc.Delete(ctx, v.ID), ErrNotScheduled)

	arrived, err := svc.SetStatus(ctx, v.ID, StatusTiba)
	require.NoError(t, err)
	assert.Equal(t, StatusTiba, arrived.Status)
	tx, err = txSvc.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusDalamPerjalanan, tx.Status, "arrival waits for delivery confirmation")
}

func TestCancelFreesShipments(t *testing.T) {
	svc, txSvc, ids := setup(t)
	ctx := context.Background()
	v, err := svc.Create(ctx, voyageInput(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = svc.Assign(ctx, v.ID, ids)
	require.NoError(t, err)

	cancelled, err := svc.SetStatus(ctx, v.ID, StatusBatal)
	require.NoError(t, err)
	assert.Empty(t, cancelled.TransactionIDs)
	for _, id := range ids {
		tx, err := txSvc.Get(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, tx.VoyageID)
	}
}

func TestUpcoming(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for _, days := range []int{5, -1, 2} {
		_, err := svc.Create(ctx, voyageInput(now.AddDate(0, 0, days)))
		require.NoError(t, err)
	}
	upcoming, err := svc.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.True(t, upcoming[0].ETD.Before(upcoming[1].ETD))
}

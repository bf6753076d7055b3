package employees

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/platform/docstore"
)

func TestActiveListsOnlyActiveSortedByName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemory())
	for _, in := range []Input{
		{Nama: "Wati", Jabatan: "Admin"},
		{Nama: "agus", Jabatan: "Sopir", GajiPokok: decimal.NewFromInt(3000000)},
		{Nama: "Dedi", Status: StatusNonaktif},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "agus", active[0].Nama)
	assert.True(t, active[0].GajiPokok.Equal(decimal.NewFromInt(3000000)))

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateKeepsJabatanVerbatim(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemory())
	e, err := svc.Create(ctx, Input{Nama: "Agus", Jabatan: "Nahkoda"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, e.ID, Input{Nama: "Agus", Jabatan: "Kepala Gudang / Checker", Status: "NONAKTIF"})
	require.NoError(t, err)
	assert.Equal(t, "Kepala Gudang / Checker", updated.Jabatan)
	assert.Equal(t, StatusNonaktif, updated.Status)

	_, err = svc.Update(ctx, "missing", Input{})
	assert.ErrorIs(t, err, ErrNotFound)
}

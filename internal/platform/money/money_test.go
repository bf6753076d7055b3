package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange(t *testing.T) {
	change := PercentChange(decimal.NewFromInt(150), decimal.NewFromInt(100))
	require.NotNil(t, change)
	assert.True(t, change.Equal(decimal.NewFromInt(50)))

	drop := PercentChange(decimal.NewFromInt(50), decimal.NewFromInt(200))
	require.NotNil(t, drop)
	assert.True(t, drop.Equal(decimal.NewFromInt(-75)))

	assert.Nil(t, PercentChange(decimal.NewFromInt(10), decimal.Zero))
}

func TestRupiah(t *testing.T) {
	tests := map[string]decimal.Decimal{
		"Rp 0":         decimal.Zero,
		"Rp 999":       decimal.NewFromInt(999),
		"Rp 1.000":     decimal.NewFromInt(1000),
		"Rp 1.250.000": decimal.NewFromInt(1250000),
		"-Rp 50.000":   decimal.NewFromInt(-50000),
		"Rp 12.346":    decimal.RequireFromString("12345.6"),
	}
	for want, in := range tests {
		assert.Equal(t, want, Rupiah(in))
	}
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	raw, err := json.Marshal(map[string]decimal.Decimal{"jumlah": decimal.NewFromInt(100000)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jumlah":100000}`, string(raw))
}

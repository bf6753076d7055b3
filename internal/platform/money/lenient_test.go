package money

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type base struct {
	ID string `json:"id"`
}

type line struct {
	Amount decimal.Decimal `json:"amount"`
}

type doc struct {
	base
	Jumlah decimal.Decimal            `json:"jumlah"`
	PPN    *decimal.Decimal           `json:"ppn"`
	Nama   string                     `json:"nama"`
	Items  []line                     `json:"items"`
	ByKey  map[string]decimal.Decimal `json:"byKey"`
}

func TestZeroMalformedAmounts(t *testing.T) {
	raw := []byte(`{"id":"t-1","jumlah":"","ppn":"abc","nama":"Budi",` +
		`"items":[{"amount":"1500"},{"amount":true}],"byKey":{"a":{},"b":2.5}}`)

	fixed, changed := ZeroMalformedAmounts(raw, reflect.TypeFor[doc]())
	require.True(t, changed)

	var out doc
	require.NoError(t, json.Unmarshal(fixed, &out))
	assert.Equal(t, "t-1", out.ID)
	assert.Equal(t, "Budi", out.Nama)
	assert.True(t, out.Jumlah.IsZero())
	require.NotNil(t, out.PPN)
	assert.True(t, out.PPN.IsZero())
	require.Len(t, out.Items, 2)
	assert.True(t, out.Items[0].Amount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, out.Items[1].Amount.IsZero())
	assert.True(t, out.ByKey["a"].IsZero())
	assert.True(t, out.ByKey["b"].Equal(decimal.RequireFromString("2.5")))
}

func TestZeroMalformedAmountsLeavesValidDocuments(t *testing.T) {
	for _, raw := range []string{
		`{"jumlah":1500000,"ppn":null}`,
		`{"jumlah":"1500000"}`,
		`{"nama":"no amounts"}`,
		`not json`,
	} {
		fixed, changed := ZeroMalformedAmounts([]byte(raw), reflect.TypeFor[doc]())
		assert.False(t, changed, raw)
		assert.Equal(t, raw, string(fixed))
	}
}

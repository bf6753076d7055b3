package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQueryAddsFiltersInOrder(t *testing.T) {
	query, args := buildQuery("SELECT id", Filter{Action: "transaction.create", EntityType: "transactions", Actor: "a@c2.local"})
	assert.Equal(t, "SELECT id FROM audit_events WHERE 1=1 AND action = $1 AND entity_type = $2 AND actor_user_id = $3", query)
	assert.Equal(t, []any{"transaction.create", "transactions", "a@c2.local"}, args)
}

func TestBuildQueryWithoutFilters(t *testing.T) {
	query, args := buildQuery("SELECT id", Filter{})
	assert.Equal(t, "SELECT id FROM audit_events WHERE 1=1", query)
	assert.Empty(t, args)
}

func TestEncodeNil(t *testing.T) {
	raw, err := encode(nil)
	assert.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = encode(map[string]int{"jumlah": 5})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"jumlah":5}`, string(raw))
}

// Package docstore stores schema-less JSON documents grouped into named
// collections and publishes a change feed per collection.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	OpPut    = "put"
	OpDelete = "delete"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Meta is embedded by every stored entity.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) DocMeta() *Meta { return m }

type Record struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         string `json:"op"`
}

type Backend interface {
	Get(ctx context.Context, collection, id string) (Record, error)
	List(ctx context.Context, collection string) ([]Record, error)
	Put(ctx context.Context, collection, id string, data json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
	// Increment atomically adds one to an integer field of a document,
	// creating the document when missing, and returns the new value.
	Increment(ctx context.Context, collection, id, field string) (int64, error)
	Subscribe(ctx context.Context, collection string) (<-chan Change, error)
}

const (
	Clients      = "clients"
	Transactions = "transactions"
	Expenses     = "expenses"
	Invoices     = "invoices"
	Voyages      = "voyages"
	Fleets       = "fleets"
	Employees    = "employees"
	Attendance   = "attendance"
	Payrolls     = "payrolls"
	Metadata     = "metadata"
)

var Collections = []string{
	Clients,
	Transactions,
	Expenses,
	Invoices,
	Voyages,
	Fleets,
	Employees,
	Attendance,
	Payrolls,
	Metadata,
}

func KnownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

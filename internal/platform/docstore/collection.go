package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"c2ms/internal/platform/money"
)

// Entity is implemented by any struct embedding Meta.
type Entity interface {
	DocMeta() *Meta
}

// Collection is a typed view over one collection of a Backend.
type Collection[T any, PT interface {
	*T
	Entity
}] struct {
	backend Backend
	name    string
	now     func() time.Time
}

func NewCollection[T any, PT interface {
	*T
	Entity
}](backend Backend, name string) *Collection[T, PT] {
	return &Collection[T, PT]{
		backend: backend,
		name:    name,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Collection[T, PT]) Name() string { return c.name }

func (c *Collection[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := c.backend.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	return c.decode(rec)
}

// List returns every document of the collection; callers filter in memory.
func (c *Collection[T, PT]) List(ctx context.Context) ([]T, error) {
	recs, err := c.backend.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		doc, err := c.decode(rec)
		if err != nil {
			// one unreadable document must not hide the rest of the collection
			slog.Warn("skipping undecodable document", "collection", c.name, "id", rec.ID, "err", err)
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

// Save assigns an id and timestamps when missing and writes the whole document.
func (c *Collection[T, PT]) Save(ctx context.Context, doc *T) error {
	meta := PT(doc).DocMeta()
	now := c.now()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, meta.ID, err)
	}
	return c.backend.Put(ctx, c.name, meta.ID, raw)
}

func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	return c.backend.Delete(ctx, c.name, id)
}

func (c *Collection[T, PT]) Subscribe(ctx context.Context) (<-chan Change, error) {
	return c.backend.Subscribe(ctx, c.name)
}

// decode defaults malformed amounts to zero rather than rejecting the
// document.
func (c *Collection[T, PT]) decode(rec Record) (*T, error) {
	doc := new(T)
	if err := json.Unmarshal(rec.Data, doc); err != nil {
		repaired, ok := money.ZeroMalformedAmounts(rec.Data, reflect.TypeFor[T]())
		if !ok {
			return nil, fmt.Errorf("decode %s/%s: %w", c.name, rec.ID, err)
		}
		doc = new(T)
		if err := json.Unmarshal(repaired, doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c.name, rec.ID, err)
		}
		slog.Warn("malformed amounts read as zero", "collection", c.name, "id", rec.ID)
	}
	meta := PT(doc).DocMeta()
	if meta.ID == "" {
		meta.ID = rec.ID
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = rec.CreatedAt
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = rec.UpdatedAt
	}
	return doc, nil
}

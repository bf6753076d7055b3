package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Backend used by tests and the offline CLI.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]map[string]Record
	feed  *feed
	clock func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data:  map[string]map[string]Record{},
		feed:  newFeed(),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Get(_ context.Context, collection, id string) (Record, error) {
	if !KnownCollection(collection) {
		return Record{}, ErrUnknownCollection
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[collection][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) List(_ context.Context, collection string) ([]Record, error) {
	if !KnownCollection(collection) {
		return nil, ErrUnknownCollection
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.data[collection]))
	for _, rec := range m.data[collection] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Put(_ context.Context, collection, id string, data json.RawMessage) error {
	if !KnownCollection(collection) {
		return ErrUnknownCollection
	}
	m.mu.Lock()
	m.putLocked(collection, id, data)
	m.mu.Unlock()

	m.feed.publish(Change{Collection: collection, ID: id, Op: OpPut})
	return nil
}

func (m *Memory) putLocked(collection, id string, data json.RawMessage) {
	now := m.clock()
	if m.data[collection] == nil {
		m.data[collection] = map[string]Record{}
	}
	rec, exists := m.data[collection][id]
	if !exists {
		rec = Record{ID: id, CreatedAt: now}
	}
	rec.Data = append(json.RawMessage(nil), data...)
	rec.UpdatedAt = now
	m.data[collection][id] = rec
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	if !KnownCollection(collection) {
		return ErrUnknownCollection
	}
	m.mu.Lock()
	if _, ok := m.data[collection][id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.data[collection], id)
	m.mu.Unlock()

	m.feed.publish(Change{Collection: collection, ID: id, Op: OpDelete})
	return nil
}

func (m *Memory) Increment(_ context.Context, collection, id, field string) (int64, error) {
	if !KnownCollection(collection) {
		return 0, ErrUnknownCollection
	}
	m.mu.Lock()
	counters := map[string]any{}
	if rec, ok := m.data[collection][id]; ok {
		if err := json.Unmarshal(rec.Data, &counters); err != nil {
			m.mu.Unlock()
			return 0, fmt.Errorf("decode counter document: %w", err)
		}
	}
	var current int64
	if v, ok := counters[field].(float64); ok {
		current = int64(v)
	}
	next := current + 1
	counters[field] = next
	raw, err := json.Marshal(counters)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}
	m.putLocked(collection, id, raw)
	m.mu.Unlock()

	m.feed.publish(Change{Collection: collection, ID: id, Op: OpPut})
	return next, nil
}

func (m *Memory) Subscribe(ctx context.Context, collection string) (<-chan Change, error) {
	if !KnownCollection(collection) {
		return nil, ErrUnknownCollection
	}
	return m.feed.subscribe(ctx, collection), nil
}

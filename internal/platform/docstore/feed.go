package docstore

import (
	"context"
	"log/slog"
	"sync"
)

const subscriberBuffer = 64

// feed fans changes out to per-collection subscribers. A subscriber that
// cannot keep up loses events instead of stalling publishers.
type feed struct {
	mu   sync.Mutex
	subs map[string]map[chan Change]struct{}
}

func newFeed() *feed {
	return &feed{subs: map[string]map[chan Change]struct{}{}}
}

func (f *feed) subscribe(ctx context.Context, collection string) <-chan Change {
	ch := make(chan Change, subscriberBuffer)

	f.mu.Lock()
	if f.subs[collection] == nil {
		f.subs[collection] = map[chan Change]struct{}{}
	}
	f.subs[collection][ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs[collection], ch)
		f.mu.Unlock()
		close(ch)
	}()
	return ch
}

func (f *feed) publish(change Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[change.Collection] {
		select {
		case ch <- change:
		default:
			slog.Warn("change feed subscriber lagging, event dropped", "collection", change.Collection, "id", change.ID)
		}
	}
}

func (f *feed) subscriberCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[collection])
}

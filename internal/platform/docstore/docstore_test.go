package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type note struct {
	Meta
	Text string `json:"text"`
}

func TestCollectionSaveAssignsMeta(t *testing.T) {
	ctx := context.Background()
	notes := NewCollection[note](NewMemory(), Clients)

	doc := &note{Text: "hello"}
	require.NoError(t, notes.Save(ctx, doc))
	require.NotEmpty(t, doc.ID)
	require.False(t, doc.CreatedAt.IsZero())

	got, err := notes.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, doc.ID, got.ID)

	created := got.CreatedAt
	got.Text = "updated"
	require.NoError(t, notes.Save(ctx, got))
	again, err := notes.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", again.Text)
	assert.True(t, again.CreatedAt.Equal(created))
}

func TestCollectionGetMissing(t *testing.T) {
	notes := NewCollection[note](NewMemory(), Clients)
	_, err := notes.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUnknownCollectionRejected(t *testing.T) {
	mem := NewMemory()
	_, err := mem.List(context.Background(), "widgets")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestMemoryIncrementIsSequential(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	seen := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := mem.Increment(ctx, Metadata, "stt_counters", "2603")
			if err == nil {
				seen <- n
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for n := range seen {
		unique[n] = true
	}
	assert.Len(t, unique, 50)
	assert.True(t, unique[1])
	assert.True(t, unique[50])
}

func TestSubscribeReceivesChangesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	mem := NewMemory()
	notes := NewCollection[note](mem, Transactions)
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := notes.Subscribe(ctx)
	require.NoError(t, err)

	doc := &note{Text: "a"}
	require.NoError(t, notes.Save(context.Background(), doc))
	require.NoError(t, notes.Delete(context.Background(), doc.ID))

	select {
	case change := <-changes:
		assert.Equal(t, Change{Collection: Transactions, ID: doc.ID, Op: OpPut}, change)
	case <-time.After(time.Second):
		t.Fatal("expected put change")
	}
	select {
	case change := <-changes:
		assert.Equal(t, OpDelete, change.Op)
	case <-time.After(time.Second):
		t.Fatal("expected delete change")
	}

	cancel()
	for range changes {
	}
	assert.Equal(t, 0, mem.feed.subscriberCount(Transactions))
}

func TestSubscriberOnlySeesOwnCollection(t *testing.T) {
	mem := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := mem.Subscribe(ctx, Invoices)
	require.NoError(t, err)
	require.NoError(t, mem.Put(ctx, Clients, "c1", []byte(`{}`)))

	select {
	case change := <-changes:
		t.Fatalf("unexpected change %+v", change)
	case <-time.After(50 * time.Millisecond):
	}
}

type priced struct {
	Meta
	Text   string          `json:"text"`
	Amount decimal.Decimal `json:"amount"`
}

func TestCollectionDefaultsMalformedAmounts(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	require.NoError(t, backend.Put(ctx, Expenses, "ok", []byte(`{"text":"bbm","amount":250000}`)))
	require.NoError(t, backend.Put(ctx, Expenses, "blank", []byte(`{"text":"tol","amount":""}`)))
	require.NoError(t, backend.Put(ctx, Expenses, "broken", []byte(`{"text":42,"amount":1}`)))
	items := NewCollection[priced](backend, Expenses)

	blank, err := items.Get(ctx, "blank")
	require.NoError(t, err)
	assert.Equal(t, "tol", blank.Text)
	assert.True(t, blank.Amount.IsZero())

	_, err = items.Get(ctx, "broken")
	assert.Error(t, err)

	all, err := items.List(ctx)
	require.NoError(t, err)
	total := decimal.Zero
	ids := []string{}
	for _, it := range all {
		total = total.Add(it.Amount)
		ids = append(ids, it.ID)
	}
	assert.ElementsMatch(t, []string{"ok", "blank"}, ids)
	assert.True(t, total.Equal(decimal.NewFromInt(250000)))
}

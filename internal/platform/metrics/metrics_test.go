package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 2*time.Millisecond)
	c.Record(404, 0)
	c.LiveClient(1)
	c.LiveClient(1)
	c.LiveClient(-1)
	c.ChatToolCall()
	c.JobRun("invoice_overdue", false)
	c.JobRun("invoice_overdue", true)

	snap := c.Snapshot()
	assert.Equal(t, uint64(4), snap.Requests)
	assert.Equal(t, uint64(1), snap.ServerErrors)
	assert.Equal(t, uint64(2), snap.ClientErrors)
	assert.Equal(t, uint64(1), snap.RateLimited)
	assert.Equal(t, uint64(42), snap.TotalDurationMs)
	assert.InDelta(t, 10.5, snap.AvgDurationMs, 0.001)
	assert.Equal(t, int64(1), snap.LiveClients)
	assert.Equal(t, uint64(1), snap.ChatToolCalls)
	assert.Equal(t, map[string]JobStats{"invoice_overdue": {Runs: 2, Failures: 1}}, snap.Jobs)
	assert.False(t, snap.StartedAt.IsZero())
}

func TestSnapshotIsACopy(t *testing.T) {
	c := New()
	c.JobRun("payroll", false)
	snap := c.Snapshot()
	c.JobRun("payroll", false)
	assert.Equal(t, uint64(1), snap.Jobs["payroll"].Runs)
	assert.Equal(t, uint64(2), c.Snapshot().Jobs["payroll"].Runs)
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(200, time.Millisecond)
			c.JobRun("x", false)
		}()
	}
	wg.Wait()
	snap := c.Snapshot()
	assert.Equal(t, uint64(20), snap.Requests)
	assert.Equal(t, uint64(20), snap.Jobs["x"].Runs)
}

func TestEmptySnapshotAverageIsZero(t *testing.T) {
	assert.Zero(t, New().Snapshot().AvgDurationMs)
}

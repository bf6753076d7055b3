// Package metrics keeps in-process counters exposed on /metrics.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// JobStats counts runs of one background job type.
type JobStats struct {
	Runs     uint64 `json:"runs"`
	Failures uint64 `json:"failures"`
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	StartedAt       time.Time           `json:"startedAt"`
	UptimeSeconds   int64               `json:"uptimeSeconds"`
	Requests        uint64              `json:"requestsTotal"`
	ClientErrors    uint64              `json:"clientErrorsTotal"`
	ServerErrors    uint64              `json:"errorsTotal"`
	RateLimited     uint64              `json:"rateLimitedTotal"`
	TotalDurationMs uint64              `json:"totalDurationMs"`
	AvgDurationMs   float64             `json:"avgDurationMs"`
	LiveClients     int64               `json:"liveClients"`
	ChatToolCalls   uint64              `json:"chatToolCalls"`
	Jobs            map[string]JobStats `json:"jobs"`
}

type Collector struct {
	started time.Time

	requests     atomic.Uint64
	clientErrors atomic.Uint64
	serverErrors atomic.Uint64
	rateLimited  atomic.Uint64
	durationMs   atomic.Uint64
	liveClients  atomic.Int64
	chatTools    atomic.Uint64

	mu   sync.Mutex
	jobs map[string]JobStats
}

func New() *Collector {
	return &Collector{started: time.Now(), jobs: map[string]JobStats{}}
}

// Record counts one finished HTTP request.
func (c *Collector) Record(status int, duration time.Duration) {
	c.requests.Add(1)
	switch {
	case status == 429:
		c.rateLimited.Add(1)
		c.clientErrors.Add(1)
	case status >= 500:
		c.serverErrors.Add(1)
	case status >= 400:
		c.clientErrors.Add(1)
	}
	if ms := duration.Milliseconds(); ms > 0 {
		c.durationMs.Add(uint64(ms))
	}
}

// LiveClient adjusts the gauge of open websocket subscriptions.
func (c *Collector) LiveClient(delta int64) {
	c.liveClients.Add(delta)
}

func (c *Collector) ChatToolCall() {
	c.chatTools.Add(1)
}

func (c *Collector) JobRun(jobType string, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.jobs[jobType]
	stats.Runs++
	if failed {
		stats.Failures++
	}
	c.jobs[jobType] = stats
}

func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{
		StartedAt:       c.started,
		UptimeSeconds:   int64(time.Since(c.started).Seconds()),
		Requests:        c.requests.Load(),
		ClientErrors:    c.clientErrors.Load(),
		ServerErrors:    c.serverErrors.Load(),
		RateLimited:     c.rateLimited.Load(),
		TotalDurationMs: c.durationMs.Load(),
		LiveClients:     c.liveClients.Load(),
		ChatToolCalls:   c.chatTools.Load(),
	}
	if snap.Requests > 0 {
		snap.AvgDurationMs = float64(snap.TotalDurationMs) / float64(snap.Requests)
	}

	c.mu.Lock()
	snap.Jobs = make(map[string]JobStats, len(c.jobs))
	for k, v := range c.jobs {
		snap.Jobs[k] = v
	}
	c.mu.Unlock()
	return snap
}

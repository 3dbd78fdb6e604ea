package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	start time.Time
	count int
}

// Memory is a process-local fixed-window limiter.
type Memory struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	counters map[string]*counter
}

func NewMemory(limit int, window time.Duration) *Memory {
	limit, window = normalize(limit, window)
	return &Memory{
		limit:    limit,
		window:   window,
		now:      time.Now,
		counters: make(map[string]*counter),
	}
}

func (m *Memory) Admit(_ context.Context, callerID string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admitAt(m.now(), callerID)
}

// admitAt must be called with mu held.
func (m *Memory) admitAt(now time.Time, callerID string) Decision {
	start := windowStart(now, m.window)
	m.prune(start)

	c, ok := m.counters[callerID]
	if !ok || !c.start.Equal(start) {
		c = &counter{start: start}
		m.counters[callerID] = c
	}

	if c.count >= m.limit {
		return Decision{Allowed: false, RetryAfterSeconds: retryAfter(now, m.window)}
	}
	c.count++
	return Decision{Allowed: true}
}

func (m *Memory) prune(current time.Time) {
	for id, c := range m.counters {
		if c.start.Before(current) {
			delete(m.counters, id)
		}
	}
}

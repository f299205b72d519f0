package eventlog

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryCapacity is the number of events a MemorySink keeps when no
// capacity is given.
const DefaultMemoryCapacity = 4096

// MemorySink keeps the most recent events in memory, evicting the oldest
// once full.
type MemorySink struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	evicted  int64
}

// NewMemorySink returns a sink holding at most capacity events.
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemorySink{capacity: capacity}
}

// Append stores e, evicting the oldest event when full.
func (m *MemorySink) Append(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.events) >= m.capacity {
		m.events = m.events[1:]
		m.evicted++
	}
	m.events = append(m.events, e)
	return nil
}

// Close does nothing; the events stay readable.
func (m *MemorySink) Close() error { return nil }

// Events returns a copy of every stored event in append order.
func (m *MemorySink) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Evicted returns how many events were dropped to stay within capacity.
func (m *MemorySink) Evicted() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.evicted
}

// Query returns the stored events matching f in append order.
func (m *MemorySink) Query(_ context.Context, f Filter) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Event
	for _, e := range m.events {
		if !f.Matches(e) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored events matching f.
func (m *MemorySink) Count(_ context.Context, f Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, e := range m.events {
		if f.Matches(e) {
			n++
		}
	}
	return n, nil
}

// DeleteBefore drops events older than cutoff.
func (m *MemorySink) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[:0]
	var deleted int64
	for _, e := range m.events {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return deleted, nil
}

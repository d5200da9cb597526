// Package history provides the bounded in-memory signal buffer backing
// correlation and analytics.
package history

import (
	"time"

	"github.com/hawkline-systems/hawkline/internal/signal"
)

// History is a bounded, insertion-ordered buffer of recent signals.
// Inserting past capacity evicts the oldest entry. It is not safe for
// concurrent use; the owning engine serializes access.
type History struct {
	signals  []signal.Signal
	capacity int
}

// DefaultCorrelationCapacity bounds the correlation-facing history.
const DefaultCorrelationCapacity = 1000

// DefaultAnalyticsCapacity bounds the analytics-facing history, which keeps
// a longer tail for trend and distribution queries.
const DefaultAnalyticsCapacity = 10000

// New creates a History holding at most capacity signals. Non-positive
// capacities fall back to the correlation default.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCorrelationCapacity
	}
	return &History{
		signals:  make([]signal.Signal, 0, capacity),
		capacity: capacity,
	}
}

// Append stores a signal, evicting the oldest entry when the buffer is
// full. Validation is the caller's responsibility; Append never rejects.
func (h *History) Append(s signal.Signal) {
	if len(h.signals) >= h.capacity {
		// FIFO eviction: drop from the front, keep insertion order.
		n := copy(h.signals, h.signals[1:])
		h.signals = h.signals[:n]
	}
	h.signals = append(h.signals, s)
}

// WindowSince returns the buffered signals whose ProducedAt falls in
// [now-window, now], preserving insertion order. Producers may submit
// out-of-order timestamps, so this is a full filter scan rather than a
// range cut.
func (h *History) WindowSince(now time.Time, window time.Duration) []signal.Signal {
	cutoff := now.Add(-window)
	var out []signal.Signal
	for _, s := range h.signals {
		if !s.ProducedAt.Before(cutoff) && !s.ProducedAt.After(now) {
			out = append(out, s)
		}
	}
	return out
}

// All returns the buffered signals in insertion order. The returned slice
// aliases the buffer and must not be mutated or retained across inserts.
func (h *History) All() []signal.Signal {
	return h.signals
}

// Recent returns the most recent limit signals in insertion order. A
// non-positive or oversized limit returns the whole buffer.
func (h *History) Recent(limit int) []signal.Signal {
	if limit <= 0 || limit > len(h.signals) {
		limit = len(h.signals)
	}
	out := make([]signal.Signal, limit)
	copy(out, h.signals[len(h.signals)-limit:])
	return out
}

// Len reports the number of buffered signals.
func (h *History) Len() int { return len(h.signals) }

// Capacity reports the configured bound.
func (h *History) Capacity() int { return h.capacity }

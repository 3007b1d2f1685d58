package ai

import (
	"sync/atomic"
	"time"
)

// Metrics tracks calls made to the AI service.
type Metrics struct {
	calls     atomic.Int64
	errors    atomic.Int64
	latencyNs atomic.Int64
	throttled atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Calls          int64   `json:"calls"`
	Errors         int64   `json:"errors"`
	Throttled      int64   `json:"throttled"`
	AvgLatencyMs   float64 `json:"avgLatencyMs"`
	TotalLatencyMs float64 `json:"totalLatencyMs"`
}

func (m *Metrics) record(duration time.Duration, err error) {
	m.calls.Add(1)
	m.latencyNs.Add(duration.Nanoseconds())
	if err != nil {
		m.errors.Add(1)
	}
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	calls := m.calls.Load()
	total := float64(m.latencyNs.Load()) / float64(time.Millisecond)
	s := MetricsSnapshot{
		Calls:          calls,
		Errors:         m.errors.Load(),
		Throttled:      m.throttled.Load(),
		TotalLatencyMs: total,
	}
	if calls > 0 {
		s.AvgLatencyMs = total / float64(calls)
	}
	return s
}

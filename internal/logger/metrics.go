package logger

import (
	"sync"
	"time"
)

// Metrics tracks counters and timings. All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string]*timing
}

// timing holds running aggregates so memory stays constant per name.
type timing struct {
	count    int
	total    time.Duration
	min, max time.Duration
}

// TimingStats summarises the recorded durations of one timing.
type TimingStats struct {
	Count   int    `json:"count"`
	Total   string `json:"total"`
	Average string `json:"average"`
	Min     string `json:"min"`
	Max     string `json:"max"`
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Counters map[string]int64       `json:"counters"`
	Timings  map[string]TimingStats `json:"timings"`
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string]*timing),
	}
}

// IncrCounter increments a counter by 1.
func (m *Metrics) IncrCounter(name string) {
	m.AddCounter(name, 1)
}

// AddCounter adds n to a counter.
func (m *Metrics) AddCounter(name string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += n
}

// RecordTiming records one duration measurement.
func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timings[name]
	if !ok {
		m.timings[name] = &timing{count: 1, total: d, min: d, max: d}
		return
	}
	t.count++
	t.total += d
	t.min = min(t.min, d)
	t.max = max(t.max, d)
}

// Snapshot returns a deep copy of the counters and per-timing statistics.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}
	for k, v := range m.counters {
		snap.Counters[k] = v
	}

	for name, t := range m.timings {
		snap.Timings[name] = TimingStats{
			Count:   t.count,
			Total:   t.total.String(),
			Average: (t.total / time.Duration(t.count)).String(),
			Min:     t.min.String(),
			Max:     t.max.String(),
		}
	}

	return snap
}

// IncrCounter increments a counter on the default tracker.
func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

// AddCounter adds n to a counter on the default tracker.
func AddCounter(name string, n int64) {
	defaultMetrics.AddCounter(name, n)
}

// RecordTiming records a timing on the default tracker.
func RecordTiming(name string, d time.Duration) {
	defaultMetrics.RecordTiming(name, d)
}

// MetricsSnapshot returns a snapshot of the default tracker.
func MetricsSnapshot() Snapshot {
	return defaultMetrics.Snapshot()
}

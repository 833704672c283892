package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyMicros = 1
	maxLatencyMicros = int64(time.Hour / time.Microsecond)
	latencySigFigs   = 3
)

// MemoryMetrics implements Recorder with in-memory counters and
// an HDR histogram of settlement latency. It is safe for
// concurrent use.
type MemoryMetrics struct {
	mu         sync.Mutex
	outcomes   map[string]int
	latency    *hdrhistogram.Histogram
	registered int
	pending    int
}

// NewMemoryMetrics creates an empty MemoryMetrics.
func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{
		outcomes: make(map[string]int),
		latency: hdrhistogram.New(
			minLatencyMicros, maxLatencyMicros, latencySigFigs,
		),
	}
}

func outcomeKey(matcher string, passed bool) string {
	if passed {
		return matcher + ":passed"
	}
	return matcher + ":failed"
}

func (m *MemoryMetrics) RecordVerification(matcher string, passed bool, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outcomes[outcomeKey(matcher, passed)]++

	micros := latency.Microseconds()
	if micros < minLatencyMicros {
		micros = minLatencyMicros
	}
	if micros > maxLatencyMicros {
		micros = maxLatencyMicros
	}
	// In range by construction.
	_ = m.latency.RecordValue(micros)
}

func (m *MemoryMetrics) IncrementRegistered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered++
}

func (m *MemoryMetrics) SetPending(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = count
}

// OutcomeCount returns how many verifications of matcher ended
// with the given outcome.
func (m *MemoryMetrics) OutcomeCount(matcher string, passed bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[outcomeKey(matcher, passed)]
}

// Registered returns the number of registered expectations.
func (m *MemoryMetrics) Registered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registered
}

// Pending returns the current pending gauge.
func (m *MemoryMetrics) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Verifications returns the number of recorded verifications.
func (m *MemoryMetrics) Verifications() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latency.TotalCount()
}

// LatencyPercentile returns the settlement latency at the given
// percentile (0-100), at microsecond resolution.
func (m *MemoryMetrics) LatencyPercentile(p float64) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.latency.ValueAtQuantile(p)) * time.Microsecond
}

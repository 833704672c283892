// Package metrics records verification outcomes and settlement
// latency.
package metrics

import "time"

// Recorder defines the interface for recording verification
// metrics.
type Recorder interface {
	// RecordVerification records one evaluated expectation: the
	// matcher name, whether it succeeded, and the time from
	// registration to settlement.
	RecordVerification(matcher string, passed bool, latency time.Duration)
	// IncrementRegistered counts an expectation that attached to
	// a promise.
	IncrementRegistered()
	// SetPending sets the gauge of expectations awaiting
	// settlement.
	SetPending(count int)
}

// NoopMetrics is a no-op Recorder, used when metrics collection
// is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordVerification(_ string, _ bool, _ time.Duration) {}
func (NoopMetrics) IncrementRegistered()                                {}
func (NoopMetrics) SetPending(_ int)                                    {}

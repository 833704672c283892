// Package expect binds the promise matchers to the standard
// testing package.
//
//	func TestFetch(t *testing.T) {
//		e := expect.New(t)
//		e.That(fetch()).ToBeResolvedWith("ok")
//		e.That(fetch()).Not().ToBeRejected()
//	}
package expect

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"digital.vasic.promisematchers/pkg/logging"
	"digital.vasic.promisematchers/pkg/matcher"
	"digital.vasic.promisematchers/pkg/metrics"
	"digital.vasic.promisematchers/pkg/promise"
)

// DefaultTimeout bounds how long an assertion waits for a promise
// to settle.
const DefaultTimeout = 5 * time.Second

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithLogger sets the logger used by the verifier and the loop.
func WithLogger(logger logging.Logger) HarnessOption {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithMetrics sets the metrics recorder of the verifier.
func WithMetrics(m metrics.Recorder) HarnessOption {
	return func(h *Harness) {
		h.metrics = m
	}
}

// WithDefaultTimeout sets the timeout of assertions made through
// the Harness.
func WithDefaultTimeout(d time.Duration) HarnessOption {
	return func(h *Harness) {
		h.timeout = d
	}
}

// Harness is the test context a suite runs in. It owns the loop
// that default promises settle on, the Slot holding the active
// promise implementation, and the Verifier the matchers share.
type Harness struct {
	logger  logging.Logger
	metrics metrics.Recorder
	timeout time.Duration

	loop     *promise.Loop
	slot     *promise.Slot
	verifier *matcher.Verifier
}

// NewHarness creates a Harness and starts its loop. Callers must
// Close it.
func NewHarness(opts ...HarnessOption) *Harness {
	h := &Harness{
		logger:  logging.NullLogger{},
		metrics: metrics.NoopMetrics{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.loop = promise.NewLoop(promise.WithLoopLogger(h.logger))
	h.slot = promise.NewSlot(promise.SchedulerFactory(h.loop))
	h.verifier = matcher.NewVerifier(
		matcher.WithLogger(h.logger),
		matcher.WithMetrics(h.metrics),
	)
	return h
}

var (
	defaultHarness     *Harness
	defaultHarnessOnce sync.Once
)

// Default returns the process-wide Harness used by New unless
// WithHarness is given.
func Default() *Harness {
	defaultHarnessOnce.Do(func() {
		defaultHarness = NewHarness()
	})
	return defaultHarness
}

// Install activates the default promise implementation unless
// another one is already set on the Slot.
func (h *Harness) Install() {
	h.slot.Install()
}

// Uninstall restores the implementation that was active before
// Install.
func (h *Harness) Uninstall() {
	h.slot.Uninstall()
}

// Slot returns the Slot holding the active promise
// implementation.
func (h *Harness) Slot() *promise.Slot {
	return h.slot
}

// Scheduler returns the loop default promises settle on.
func (h *Harness) Scheduler() promise.Scheduler {
	return h.loop
}

// Verifier returns the Verifier shared by the matchers of every
// Expect built on h.
func (h *Harness) Verifier() *matcher.Verifier {
	return h.verifier
}

// Close drains and stops the loop. It returns the panics the
// loop recovered, such as failures reported to the default
// completion.
func (h *Harness) Close() error {
	return h.loop.Close()
}

// Main runs the tests of m inside h: it installs before m.Run,
// uninstalls and closes after. A loop error turns a passing run
// into a failing one. Use it from TestMain:
//
//	func TestMain(m *testing.M) {
//		os.Exit(expect.Main(m, expect.Default()))
//	}
func Main(m *testing.M, h *Harness) int {
	h.Install()
	code := m.Run()
	h.Uninstall()

	if err := h.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "promise loop: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

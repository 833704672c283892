package expect

import (
	"context"
	"testing"
	"time"

	"digital.vasic.promisematchers/pkg/matcher"
	"digital.vasic.promisematchers/pkg/promise"
)

// Option configures an Expect.
type Option func(*Expect)

// WithHarness makes the Expect use h instead of Default().
func WithHarness(h *Harness) Option {
	return func(e *Expect) {
		e.harness = h
	}
}

// WithTimeout overrides the harness timeout for one Expect.
func WithTimeout(d time.Duration) Option {
	return func(e *Expect) {
		e.timeout = d
	}
}

// Expect makes promise assertions for one test. Each Expect gets
// its own Registry with the four built-in matchers.
type Expect struct {
	t        testing.TB
	harness  *Harness
	registry *matcher.DefaultRegistry
	timeout  time.Duration
}

// New creates an Expect reporting to t.
func New(t testing.TB, opts ...Option) *Expect {
	e := &Expect{t: t}
	for _, opt := range opts {
		opt(e)
	}
	if e.harness == nil {
		e.harness = Default()
	}
	if e.timeout <= 0 {
		e.timeout = e.harness.timeout
	}
	e.registry = matcher.NewRegistry(e.harness.verifier)
	return e
}

// Registry returns the matcher registry of e. Custom matchers
// registered here are available through Matcher.
func (e *Expect) Registry() matcher.Registry {
	return e.registry
}

// Matcher returns the matcher registered under name.
func (e *Expect) Matcher(name string) (matcher.Matcher, error) {
	return e.registry.Get(name)
}

// Deferred creates a pending promise with the implementation
// active on the harness. The test fails immediately when none is
// installed.
func (e *Expect) Deferred() promise.Deferred {
	e.t.Helper()

	d, err := e.harness.slot.New()
	if err != nil {
		e.t.Fatalf("expect: %v", err)
		return nil
	}
	return d
}

// That starts an assertion about value.
func (e *Expect) That(value promise.Promise) *Assertion {
	return &Assertion{e: e, value: value}
}

// Assertion is one expectation under construction.
type Assertion struct {
	e      *Expect
	value  promise.Promise
	negate bool
	done   matcher.Completion
}

// Not negates the assertion.
func (a *Assertion) Not() *Assertion {
	c := *a
	c.negate = !a.negate
	return &c
}

// Using reports the outcome through done instead of the test.
// The ToBe methods then return as soon as the expectation is
// registered.
func (a *Assertion) Using(done matcher.Completion) *Assertion {
	c := *a
	c.done = done
	return &c
}

// ToBeRejected asserts that the promise is rejected.
func (a *Assertion) ToBeRejected() bool {
	a.e.t.Helper()
	return a.check(matcher.NameToBeRejected, nil)
}

// ToBeRejectedWith asserts that the promise is rejected with
// reason.
func (a *Assertion) ToBeRejectedWith(reason any) bool {
	a.e.t.Helper()
	return a.check(matcher.NameToBeRejectedWith, reason)
}

// ToBeResolved asserts that the promise is resolved.
func (a *Assertion) ToBeResolved() bool {
	a.e.t.Helper()
	return a.check(matcher.NameToBeResolved, nil)
}

// ToBeResolvedWith asserts that the promise is resolved with
// value.
func (a *Assertion) ToBeResolvedWith(value any) bool {
	a.e.t.Helper()
	return a.check(matcher.NameToBeResolvedWith, value)
}

// check runs the named matcher. Without a completion from Using
// it waits for the outcome and reports a failure or a timeout
// through the test.
func (a *Assertion) check(name string, expected any) bool {
	t := a.e.t
	t.Helper()

	m, err := a.e.registry.Get(name)
	if err != nil {
		t.Errorf("expect: %v", err)
		return false
	}

	compare := m.Compare
	if a.negate {
		compare = m.NegativeCompare
	}

	if a.done != nil {
		return compare(a.value, expected, a.done).Pass
	}

	signal := matcher.NewSignal()
	compare(a.value, expected, signal)

	ctx, cancel := context.WithTimeout(context.Background(), a.e.timeout)
	defer cancel()

	outcome, err := signal.Wait(ctx)
	if err != nil {
		t.Errorf("%s: promise did not settle within %s", name, a.e.timeout)
		return false
	}
	if outcome.Failed {
		t.Errorf("%s", outcome.Message)
		return false
	}
	return true
}

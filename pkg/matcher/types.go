// Package matcher turns promise expectations into deferred
// verifications. A Matcher registers continuations on a promise,
// compares the settlement against the expectation once it
// arrives, and reports the outcome through a Completion.
package matcher

import (
	"context"

	"github.com/pkg/errors"
)

// Disposition is the terminal state of a promise as named in
// failure messages.
type Disposition string

const (
	// Resolved means the promise was fulfilled with a value.
	Resolved Disposition = "resolved"
	// Rejected means the promise was rejected with a reason.
	Rejected Disposition = "rejected"
)

// ParseDisposition maps "resolved" (or "fulfilled") and
// "rejected" to a Disposition.
func ParseDisposition(s string) (Disposition, error) {
	switch s {
	case "resolved", "fulfilled":
		return Resolved, nil
	case "rejected":
		return Rejected, nil
	}
	return "", errors.Errorf("unknown disposition %q", s)
}

// Expectation is one declared assertion about a promise.
type Expectation struct {
	// Disposition is the expected terminal state.
	Disposition Disposition

	// Expected is the payload the settlement data is compared
	// with. Ignored unless HasPayload is set.
	Expected any

	// HasPayload reports whether Expected takes part in the
	// comparison. nil is a valid expected payload.
	HasPayload bool

	// Negate inverts the comparison.
	Negate bool
}

// Name returns the name of the matcher that declares e.
func (e Expectation) Name() string {
	return NameFor(e.Disposition, e.HasPayload)
}

// PayloadMatcher decides equality with a predicate instead of
// strict equality.
type PayloadMatcher interface {
	Matches(actual any) bool
}

// ErrorLike values are compared by their description when both
// the observed and the expected payload are error-like. Plain
// errors are error-like through Error().
type ErrorLike interface {
	Description() string
}

// Comparison is the outcome of one comparison step.
type Comparison struct {
	Passed  bool
	Message string
}

// Result is what Compare and NegativeCompare return
// synchronously. The real outcome arrives through the
// Completion.
type Result struct {
	Pass    bool
	Message string
}

// Completion is the asynchronous completion signal of a test.
type Completion interface {
	// Done reports success.
	Done()
	// Fail reports failure with a message.
	Fail(message string)
}

// ErrFailed is the panic value, wrapped with the failure
// message, raised by the completion used when none is supplied.
var ErrFailed = errors.New("failed")

type defaultCompletion struct{}

func (defaultCompletion) Done() {}

func (defaultCompletion) Fail(message string) {
	panic(errors.Wrap(ErrFailed, message))
}

// CompletionFuncs adapts a pair of functions to a Completion.
// Nil functions are skipped.
type CompletionFuncs struct {
	OnDone func()
	OnFail func(message string)
}

// Done calls OnDone.
func (c CompletionFuncs) Done() {
	if c.OnDone != nil {
		c.OnDone()
	}
}

// Fail calls OnFail with message.
func (c CompletionFuncs) Fail(message string) {
	if c.OnFail != nil {
		c.OnFail(message)
	}
}

// Outcome is a completed verification as seen by a Signal.
type Outcome struct {
	Failed  bool
	Message string
}

// Signal is a Completion that can be waited on. Only the first
// report is kept.
type Signal struct {
	ch chan Outcome
}

// NewSignal creates a Signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan Outcome, 1)}
}

// Done reports a successful outcome.
func (s *Signal) Done() {
	s.report(Outcome{})
}

// Fail reports a failed outcome with message.
func (s *Signal) Fail(message string) {
	s.report(Outcome{Failed: true, Message: message})
}

func (s *Signal) report(o Outcome) {
	select {
	case s.ch <- o:
	default:
	}
}

// Wait blocks until the Signal is reported or ctx is done.
func (s *Signal) Wait(ctx context.Context) (Outcome, error) {
	select {
	case o := <-s.ch:
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

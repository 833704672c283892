package matcher

import "digital.vasic.promisematchers/pkg/promise"

// Names of the built-in matchers.
const (
	NameToBeRejected     = "toBeRejected"
	NameToBeRejectedWith = "toBeRejectedWith"
	NameToBeResolved     = "toBeResolved"
	NameToBeResolvedWith = "toBeResolvedWith"
)

// NameFor returns the built-in matcher name for a disposition
// and payload variant.
func NameFor(d Disposition, hasPayload bool) string {
	switch {
	case d == Rejected && hasPayload:
		return NameToBeRejectedWith
	case d == Rejected:
		return NameToBeRejected
	case hasPayload:
		return NameToBeResolvedWith
	default:
		return NameToBeResolved
	}
}

// Matcher is the contract a registered matcher fulfils. Both
// methods return immediately; the outcome is reported through
// done once value settles. Matchers without a payload ignore
// expected.
type Matcher interface {
	Compare(value promise.Promise, expected any, done Completion) Result
	NegativeCompare(value promise.Promise, expected any, done Completion) Result
}

// SettlementMatcher asserts that a promise settles with a given
// disposition and, when HasPayload is set, with a given payload.
type SettlementMatcher struct {
	Disposition Disposition
	HasPayload  bool

	verifier *Verifier
}

// NewMatcher creates a SettlementMatcher evaluated by v. A nil v
// uses a Verifier without logging or metrics.
func NewMatcher(v *Verifier, d Disposition, hasPayload bool) *SettlementMatcher {
	if v == nil {
		v = defaultVerifier
	}
	return &SettlementMatcher{
		Disposition: d,
		HasPayload:  hasPayload,
		verifier:    v,
	}
}

// Name returns the matcher name.
func (m *SettlementMatcher) Name() string {
	return NameFor(m.Disposition, m.HasPayload)
}

// Compare asserts the expectation.
func (m *SettlementMatcher) Compare(value promise.Promise, expected any, done Completion) Result {
	return m.verifier.Verify(done, value, m.expectation(expected, false))
}

// NegativeCompare asserts the negated expectation.
func (m *SettlementMatcher) NegativeCompare(value promise.Promise, expected any, done Completion) Result {
	return m.verifier.Verify(done, value, m.expectation(expected, true))
}

func (m *SettlementMatcher) expectation(expected any, negate bool) Expectation {
	exp := Expectation{
		Disposition: m.Disposition,
		HasPayload:  m.HasPayload,
		Negate:      negate,
	}
	if m.HasPayload {
		exp.Expected = expected
	}
	return exp
}

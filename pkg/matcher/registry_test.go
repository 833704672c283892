package matcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.promisematchers/pkg/promise"
)

func TestNewRegistry_RegistersBuiltins(t *testing.T) {
	r := NewRegistry(nil)

	assert.Equal(t, []string{
		NameToBeRejected,
		NameToBeRejectedWith,
		NameToBeResolved,
		NameToBeResolvedWith,
	}, r.Names())
}

func TestNewRegistry_BuiltinsAreSettlementMatchers(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name        string
		disposition Disposition
		hasPayload  bool
	}{
		{"toBeRejected", Rejected, false},
		{"toBeRejectedWith", Rejected, true},
		{"toBeResolved", Resolved, false},
		{"toBeResolvedWith", Resolved, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := r.Get(tt.name)
			require.NoError(t, err)

			sm, ok := m.(*SettlementMatcher)
			require.True(t, ok)
			assert.Equal(t, tt.disposition, sm.Disposition)
			assert.Equal(t, tt.hasPayload, sm.HasPayload)
			assert.Equal(t, tt.name, sm.Name())
		})
	}
}

func TestDefaultRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry(nil)

	err := r.Register(NameToBeResolved, func() Matcher {
		return NewMatcher(nil, Resolved, false)
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateMatcher))
	assert.EqualError(t, err, NameToBeResolved+": matcher already registered")
}

func TestDefaultRegistry_Register_Custom(t *testing.T) {
	r := NewEmptyRegistry()

	err := r.Register("toSettle", func() Matcher {
		return NewMatcher(nil, Resolved, false)
	})

	require.NoError(t, err)
	assert.True(t, r.Has("toSettle"))
	assert.False(t, r.Has(NameToBeResolved))
}

func TestDefaultRegistry_Get_Unknown(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Get("toBePending")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMatcher))
	assert.EqualError(t, err, "toBePending: unknown matcher")
}

func TestRegisterDefaults_StopsOnCollision(t *testing.T) {
	r := NewEmptyRegistry()
	require.NoError(t, r.Register(NameToBeResolved, func() Matcher { return nil }))

	err := RegisterDefaults(r, nil)
	assert.ErrorIs(t, err, ErrDuplicateMatcher)
}

func TestSettlementMatcher_NegativeCompare(t *testing.T) {
	inline := promise.SchedulerFunc(func(task func()) { task() })
	m := NewMatcher(nil, Resolved, true)

	tests := []struct {
		name       string
		value      promise.Promise
		expected   any
		negate     bool
		wantFailed bool
	}{
		{"compare equal", promise.Resolved(inline, "a"), "a", false, false},
		{"compare different", promise.Resolved(inline, "a"), "b", false, true},
		{"negative on rejection", promise.Rejected(inline, errors.New("e")), "a", true, false},
		{"negative on same value", promise.Resolved(inline, "a"), "a", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSignal()
			var r Result
			if tt.negate {
				r = m.NegativeCompare(tt.value, tt.expected, s)
			} else {
				r = m.Compare(tt.value, tt.expected, s)
			}
			assert.True(t, r.Pass)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			o, err := s.Wait(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFailed, o.Failed)
		})
	}
}

func TestSettlementMatcher_BareIgnoresExpected(t *testing.T) {
	m := NewMatcher(nil, Rejected, false)
	assert.Equal(t,
		Expectation{Disposition: Rejected},
		m.expectation("ignored", false),
	)

	m = NewMatcher(nil, Rejected, true)
	assert.Equal(t,
		Expectation{Disposition: Rejected, Expected: "kept", HasPayload: true, Negate: true},
		m.expectation("kept", true),
	)
}

func TestNameFor(t *testing.T) {
	assert.Equal(t, NameToBeRejected, NameFor(Rejected, false))
	assert.Equal(t, NameToBeRejectedWith, NameFor(Rejected, true))
	assert.Equal(t, NameToBeResolved, NameFor(Resolved, false))
	assert.Equal(t, NameToBeResolvedWith, NameFor(Resolved, true))
	assert.Equal(t, NameToBeResolvedWith, Expectation{Disposition: Resolved, HasPayload: true}.Name())
}

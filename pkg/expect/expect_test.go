package expect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.promisematchers/pkg/asymmetric"
	"digital.vasic.promisematchers/pkg/matcher"
	"digital.vasic.promisematchers/pkg/metrics"
	"digital.vasic.promisematchers/pkg/promise"
)

// recordingT captures the failures an Expect reports.
type recordingT struct {
	testing.TB

	mu     sync.Mutex
	errors []string
}

func (r *recordingT) Helper() {}

func (r *recordingT) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.Errorf(format, args...)
}

func (r *recordingT) failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

func TestAssertion_Outcomes(t *testing.T) {
	h := Default()
	s := h.Scheduler()
	boom := errors.New("boom")

	tests := []struct {
		name    string
		assert  func(e *Expect) bool
		wantErr string
	}{
		{
			name:   "resolved is resolved",
			assert: func(e *Expect) bool { return e.That(promise.Resolved(s, 1)).ToBeResolved() },
		},
		{
			name:    "rejected is not resolved",
			assert:  func(e *Expect) bool { return e.That(promise.Rejected(s, boom)).ToBeResolved() },
			wantErr: "Expected promise to be resolved",
		},
		{
			name:   "rejected is rejected",
			assert: func(e *Expect) bool { return e.That(promise.Rejected(s, boom)).ToBeRejected() },
		},
		{
			name:    "negated with same disposition",
			assert:  func(e *Expect) bool { return e.That(promise.Resolved(s, 1)).Not().ToBeResolved() },
			wantErr: "Expected promise not to be resolved",
		},
		{
			name:   "negated with other disposition",
			assert: func(e *Expect) bool { return e.That(promise.Rejected(s, boom)).Not().ToBeResolved() },
		},
		{
			name:   "resolved with value",
			assert: func(e *Expect) bool { return e.That(promise.Resolved(s, 42)).ToBeResolvedWith(42) },
		},
		{
			name:    "resolved with other value",
			assert:  func(e *Expect) bool { return e.That(promise.Resolved(s, 43)).ToBeResolvedWith(42) },
			wantErr: `Expected "43" to be "42"`,
		},
		{
			name: "rejected with equivalent error",
			assert: func(e *Expect) bool {
				return e.That(promise.Rejected(s, boom)).ToBeRejectedWith(errors.New("boom"))
			},
		},
		{
			name: "rejected with matching reason",
			assert: func(e *Expect) bool {
				return e.That(promise.Rejected(s, boom)).ToBeRejectedWith(asymmetric.StringContaining("oo"))
			},
		},
		{
			name: "rejected with other reason",
			assert: func(e *Expect) bool {
				return e.That(promise.Rejected(s, boom)).ToBeRejectedWith(errors.New("bang"))
			},
			wantErr: `Expected "boom" to be "bang"`,
		},
		{
			name: "resolved with nil",
			assert: func(e *Expect) bool {
				return e.That(promise.Resolved(s, nil)).ToBeResolvedWith(nil)
			},
		},
		{
			name: "double negation",
			assert: func(e *Expect) bool {
				return e.That(promise.Resolved(s, 1)).Not().Not().ToBeResolved()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &recordingT{TB: t}
			ok := tt.assert(New(rt))

			if tt.wantErr == "" {
				assert.True(t, ok)
				assert.Empty(t, rt.failures())
				return
			}
			assert.False(t, ok)
			assert.Equal(t, []string{tt.wantErr}, rt.failures())
		})
	}
}

func TestAssertion_Timeout(t *testing.T) {
	rt := &recordingT{TB: t}
	e := New(rt, WithTimeout(20*time.Millisecond))

	ok := e.That(promise.NewFuture(Default().Scheduler())).ToBeResolved()

	assert.False(t, ok)
	require.Len(t, rt.failures(), 1)
	assert.Contains(t, rt.failures()[0], "did not settle within 20ms")
}

func TestAssertion_UsingReportsThroughCompletion(t *testing.T) {
	rt := &recordingT{TB: t}
	e := New(rt)
	d := e.Deferred()
	signal := matcher.NewSignal()

	assert.True(t, e.That(d).Using(signal).ToBeResolvedWith("late"))

	d.Resolve("early")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	outcome, err := signal.Wait(ctx)
	require.NoError(t, err)

	assert.True(t, outcome.Failed)
	assert.Equal(t, `Expected "early" to be "late"`, outcome.Message)
	assert.Empty(t, rt.failures(), "failures go to the completion only")
}

func TestAssertion_NotDoesNotMutateReceiver(t *testing.T) {
	e := New(t)
	a := e.That(promise.Resolved(Default().Scheduler(), 1))
	_ = a.Not()

	assert.True(t, a.ToBeResolved())
}

func TestExpect_DeferredSettledElsewhere(t *testing.T) {
	e := New(t)
	d := e.Deferred()

	go func() {
		time.Sleep(5 * time.Millisecond)
		d.Resolve("done")
	}()

	assert.True(t, e.That(d).ToBeResolvedWith("done"))
}

func TestExpect_DeferredWithoutInstall(t *testing.T) {
	h := NewHarness()
	defer h.Close()

	rt := &recordingT{TB: t}
	d := New(rt, WithHarness(h)).Deferred()

	assert.Nil(t, d)
	require.Len(t, rt.failures(), 1)
	assert.Contains(t, rt.failures()[0], promise.ErrNotInstalled.Error())
}

func TestExpect_Matcher(t *testing.T) {
	e := New(t)

	for _, name := range []string{
		matcher.NameToBeRejected,
		matcher.NameToBeRejectedWith,
		matcher.NameToBeResolved,
		matcher.NameToBeResolvedWith,
	} {
		m, err := e.Matcher(name)
		require.NoError(t, err, name)
		assert.NotNil(t, m)
	}

	_, err := e.Matcher("toBeSettled")
	assert.ErrorIs(t, err, matcher.ErrUnknownMatcher)
}

func TestExpect_RegistryIsPerTest(t *testing.T) {
	first := New(t)
	second := New(t)

	custom := func() matcher.Matcher {
		return matcher.NewMatcher(nil, matcher.Resolved, false)
	}
	require.NoError(t, first.Registry().Register("toSettle", custom))

	assert.True(t, first.Registry().Has("toSettle"))
	assert.False(t, second.Registry().Has("toSettle"))
}

func TestHarness_InstallUninstall(t *testing.T) {
	h := NewHarness()
	defer h.Close()

	assert.Nil(t, h.Slot().Factory())

	h.Install()
	assert.NotNil(t, h.Slot().Factory())

	h.Uninstall()
	assert.Nil(t, h.Slot().Factory())
}

func TestHarness_InstallKeepsHostImplementation(t *testing.T) {
	h := NewHarness()
	defer h.Close()

	inline := promise.SchedulerFunc(func(task func()) { task() })
	host := promise.SchedulerFactory(inline)
	h.Slot().Set(host)

	h.Install()
	d, err := h.Slot().New()
	require.NoError(t, err)

	var got any
	d.Then(func(v any) { got = v }, nil)
	d.Resolve("inline")
	assert.Equal(t, "inline", got, "host factory stays active")

	h.Uninstall()
	assert.NotNil(t, h.Slot().Factory())
}

func TestHarness_CloseReportsDefaultCompletionFailure(t *testing.T) {
	h := NewHarness()
	e := New(t, WithHarness(h))

	m, err := e.Matcher(matcher.NameToBeResolved)
	require.NoError(t, err)

	res := m.Compare(promise.Rejected(h.Scheduler(), "nope"), nil, nil)
	assert.True(t, res.Pass)

	err = h.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, matcher.ErrFailed)
	assert.Contains(t, err.Error(), "Expected promise to be resolved")
}

func TestHarness_Metrics(t *testing.T) {
	mem := metrics.NewMemoryMetrics()
	h := NewHarness(WithMetrics(mem), WithDefaultTimeout(time.Second))
	defer h.Close()

	rt := &recordingT{TB: t}
	e := New(rt, WithHarness(h))
	s := h.Scheduler()

	e.That(promise.Resolved(s, 1)).ToBeResolved()
	e.That(promise.Resolved(s, 1)).ToBeRejected()

	assert.Equal(t, 2, mem.Registered())
	assert.Equal(t, 0, mem.Pending())
	assert.Equal(t, 1, mem.OutcomeCount(matcher.NameToBeResolved, true))
	assert.Equal(t, 1, mem.OutcomeCount(matcher.NameToBeRejected, false))
	assert.Len(t, rt.failures(), 1)
}

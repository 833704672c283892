// Package promise provides the asynchronous-value abstraction
// the matchers inspect, a minimal default implementation backed
// by a cooperative task queue, and the Slot that scopes which
// implementation a test suite uses.
package promise

// Promise is an asynchronous value that eventually settles as
// fulfilled or rejected. Exactly one of the two callbacks runs,
// once, after settlement. Callbacks must never run synchronously
// inside Then.
type Promise interface {
	Then(onFulfilled, onRejected func(data any))
}

// Deferred is a Promise that is settled by its creator. Resolve
// and Reject report whether the call settled the promise; only
// the first settlement counts.
type Deferred interface {
	Promise
	Resolve(value any) bool
	Reject(reason any) bool
}

// Factory creates pending promises. It plays the role of a
// promise constructor.
type Factory interface {
	New() Deferred
}

// FactoryFunc adapts a function to a Factory.
type FactoryFunc func() Deferred

// New calls f.
func (f FactoryFunc) New() Deferred {
	return f()
}

// SchedulerFactory returns a Factory producing Futures whose
// callbacks run on s.
func SchedulerFactory(s Scheduler) Factory {
	return FactoryFunc(func() Deferred {
		return NewFuture(s)
	})
}

// State is the settlement state of a Future.
type State int

const (
	// StatePending means the Future has not settled.
	StatePending State = iota
	// StateFulfilled means the Future resolved with a value.
	StateFulfilled
	// StateRejected means the Future rejected with a reason.
	StateRejected
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

package promise

import "sync"

type continuation struct {
	onFulfilled func(any)
	onRejected  func(any)
}

func (c continuation) task(state State, data any) func() {
	return func() {
		switch state {
		case StateFulfilled:
			if c.onFulfilled != nil {
				c.onFulfilled(data)
			}
		case StateRejected:
			if c.onRejected != nil {
				c.onRejected(data)
			}
		}
	}
}

// Future is the default Deferred implementation. Callbacks are
// dispatched through its Scheduler in registration order. It is
// safe for concurrent use.
type Future struct {
	sched Scheduler

	mu      sync.Mutex
	state   State
	data    any
	waiting []continuation
}

// NewFuture creates a pending Future whose callbacks run on s.
func NewFuture(s Scheduler) *Future {
	return &Future{sched: s}
}

// Resolved returns a Future already fulfilled with value.
func Resolved(s Scheduler, value any) *Future {
	f := NewFuture(s)
	f.Resolve(value)
	return f
}

// Rejected returns a Future already rejected with reason.
func Rejected(s Scheduler, reason any) *Future {
	f := NewFuture(s)
	f.Reject(reason)
	return f
}

// Go runs fn on a new goroutine and settles the returned Future
// with its outcome: rejected with the error when it is non-nil,
// fulfilled with the value otherwise.
func Go(s Scheduler, fn func() (any, error)) *Future {
	f := NewFuture(s)
	go func() {
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Then registers callbacks. Either may be nil.
func (f *Future) Then(onFulfilled, onRejected func(data any)) {
	c := continuation{onFulfilled: onFulfilled, onRejected: onRejected}

	f.mu.Lock()
	if f.state == StatePending {
		f.waiting = append(f.waiting, c)
		f.mu.Unlock()
		return
	}
	state, data := f.state, f.data
	f.mu.Unlock()

	f.sched.Schedule(c.task(state, data))
}

// Resolve fulfills the Future with value.
func (f *Future) Resolve(value any) bool {
	return f.settle(StateFulfilled, value)
}

// Reject rejects the Future with reason.
func (f *Future) Reject(reason any) bool {
	return f.settle(StateRejected, reason)
}

// State returns the current state.
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Future) settle(state State, data any) bool {
	f.mu.Lock()
	if f.state != StatePending {
		f.mu.Unlock()
		return false
	}
	f.state, f.data = state, data
	waiting := f.waiting
	f.waiting = nil
	f.mu.Unlock()

	for _, c := range waiting {
		f.sched.Schedule(c.task(state, data))
	}
	return true
}

package promise

import (
	stderrors "errors"
	"sync"

	"github.com/pkg/errors"

	"digital.vasic.promisematchers/pkg/logging"
)

// Scheduler queues tasks for later execution.
type Scheduler interface {
	Schedule(task func())
}

// SchedulerFunc adapts a function to a Scheduler.
type SchedulerFunc func(task func())

// Schedule calls f.
func (f SchedulerFunc) Schedule(task func()) {
	f(task)
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger used for recovered panics and
// dropped tasks.
func WithLoopLogger(logger logging.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// Loop is a single-goroutine FIFO task queue. All tasks run one
// at a time on the loop goroutine. A panicking task is recovered
// and its panic retained; see Err.
type Loop struct {
	logger logging.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closing bool
	stopped bool
	panics  []error

	done chan struct{}
}

// NewLoop creates a Loop and starts its goroutine. Callers must
// Close it.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		logger: logging.NullLogger{},
		done:   make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

// Schedule enqueues task. Tasks scheduled after the loop has
// stopped are dropped.
func (l *Loop) Schedule(task func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		l.logger.Warn("task dropped: loop stopped")
		return
	}
	l.queue = append(l.queue, task)
	l.cond.Signal()
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closing {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.stopped = true
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.exec(task)
	}
}

func (l *Loop) exec(task func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		var err error
		if e, ok := r.(error); ok {
			err = errors.Wrap(e, "task panicked")
		} else {
			err = errors.Errorf("task panicked: %v", r)
		}
		l.logger.Error("recovered task panic", logging.ErrorField(err))

		l.mu.Lock()
		l.panics = append(l.panics, err)
		l.mu.Unlock()
	}()
	task()
}

// Close lets the loop drain every queued task, including tasks
// those tasks schedule, then stops it and waits for the loop
// goroutine to exit. It returns Err.
func (l *Loop) Close() error {
	l.mu.Lock()
	l.closing = true
	l.cond.Broadcast()
	l.mu.Unlock()

	<-l.done
	return l.Err()
}

// Err returns the recovered task panics joined into one error,
// or nil.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return stderrors.Join(l.panics...)
}

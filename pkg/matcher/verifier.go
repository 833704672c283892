package matcher

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"digital.vasic.promisematchers/pkg/logging"
	"digital.vasic.promisematchers/pkg/metrics"
	"digital.vasic.promisematchers/pkg/promise"
)

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger used for verification events.
func WithLogger(logger logging.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

// WithClock sets the time source used to measure settlement
// latency.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// Verifier is the evaluation engine shared by every matcher.
// Expectations are independent of each other; a Verifier only
// shares its logger, metrics and pending gauge between them.
type Verifier struct {
	logger  logging.Logger
	metrics metrics.Recorder
	now     func() time.Time
	pending atomic.Int64
}

// NewVerifier creates a Verifier with the supplied options.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		logger:  logging.NullLogger{},
		metrics: metrics.NoopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultVerifier = NewVerifier()

// Verify evaluates exp against value using a Verifier with no
// logging or metrics.
func Verify(done Completion, value promise.Promise, exp Expectation) Result {
	return defaultVerifier.Verify(done, value, exp)
}

// Verify attaches exp to value and returns immediately. Once
// value settles the expectation is evaluated and done is
// reported exactly once. A nil done is replaced by a completion
// whose Fail panics with ErrFailed. The returned Result always
// passes.
func (v *Verifier) Verify(done Completion, value promise.Promise, exp Expectation) Result {
	if done == nil {
		done = defaultCompletion{}
	}

	name := exp.Name()
	log := v.logger.WithFields(
		logging.StringField("verification", uuid.NewString()),
		logging.StringField("matcher", name),
		logging.BoolField("negated", exp.Negate),
	)

	started := v.now()
	v.metrics.IncrementRegistered()
	v.metrics.SetPending(int(v.pending.Add(1)))

	var settled sync.Once
	onSettle := func(observed Disposition) func(any) {
		return func(data any) {
			first := false
			settled.Do(func() { first = true })
			if !first {
				log.Warn("ignored repeated settlement",
					logging.StringField("disposition", string(observed)))
				return
			}

			v.metrics.SetPending(int(v.pending.Add(-1)))
			failed, message := Evaluate(observed, data, exp)
			latency := v.now().Sub(started)
			v.metrics.RecordVerification(name, !failed, latency)

			fields := []logging.Field{
				logging.StringField("disposition", string(observed)),
				logging.DurationField("latency", latency),
			}
			if failed {
				log.Debug("expectation failed",
					append(fields, logging.StringField("reason", message))...)
				done.Fail(message)
				return
			}
			log.Debug("expectation met", fields...)
			done.Done()
		}
	}

	log.Debug("expectation registered")
	value.Then(onSettle(Resolved), onSettle(Rejected))

	return Result{Pass: true}
}

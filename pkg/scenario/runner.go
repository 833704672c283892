package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"digital.vasic.promisematchers/pkg/logging"
	"digital.vasic.promisematchers/pkg/matcher"
	"digital.vasic.promisematchers/pkg/promise"
)

// Status is the verdict of a scenario run.
type Status string

const (
	// StatusPassed means the outcome matched the declared one.
	StatusPassed Status = "passed"
	// StatusFailed means the outcome differed from the declared
	// one.
	StatusFailed Status = "failed"
	// StatusError means the scenario could not be evaluated.
	StatusError Status = "error"
)

// Result is the outcome of one scenario.
type Result struct {
	Suite    string        `json:"suite"`
	Scenario string        `json:"scenario"`
	Matcher  string        `json:"matcher"`
	Negated  bool          `json:"negated"`
	Want     Want          `json:"want"`
	Outcome  Want          `json:"outcome,omitempty"`
	Message  string        `json:"message,omitempty"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithTimeout bounds how long each scenario waits for its
// matcher to report.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithConcurrency sets how many scenarios run at once.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// Runner evaluates scenarios with the matchers of a registry.
// Every promise it creates settles on the same scheduler.
type Runner struct {
	scheduler   promise.Scheduler
	registry    matcher.Registry
	logger      logging.Logger
	timeout     time.Duration
	concurrency int
}

// NewRunner creates a Runner.
func NewRunner(s promise.Scheduler, reg matcher.Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		scheduler:   s,
		registry:    reg,
		logger:      logging.NullLogger{},
		timeout:     5 * time.Second,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type indexedResult struct {
	index  int
	result *Result
}

// Run evaluates scenarios concurrently and returns their results
// in input order. Scenario problems are reported in the results;
// the error is only set when ctx ends before every scenario ran.
func (r *Runner) Run(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	limit := r.concurrency
	if limit <= 0 {
		limit = 1
	}

	log := r.logger.WithFields(logging.StringField("run", uuid.NewString()))
	log.Info("run started",
		logging.IntField("scenarios", len(scenarios)),
		logging.IntField("concurrency", limit))

	sem := make(chan struct{}, limit)
	resultsCh := make(chan indexedResult, len(scenarios))

	var wg sync.WaitGroup
	for i, s := range scenarios {
		wg.Add(1)
		go func(idx int, s *Scenario) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			resultsCh <- indexedResult{index: idx, result: r.runOne(ctx, log, s)}
		}(i, s)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	ordered := make([]*Result, len(scenarios))
	for ir := range resultsCh {
		ordered[ir.index] = ir.result
	}

	results := make([]*Result, 0, len(scenarios))
	for _, res := range ordered {
		if res != nil {
			results = append(results, res)
		}
	}

	log.Info("run finished", logging.IntField("evaluated", len(results)))
	if len(results) < len(scenarios) {
		return results, ctx.Err()
	}
	return results, nil
}

// RunOne evaluates a single scenario.
func (r *Runner) RunOne(ctx context.Context, s *Scenario) *Result {
	return r.runOne(ctx, r.logger, s)
}

func (r *Runner) runOne(ctx context.Context, log logging.Logger, s *Scenario) *Result {
	started := time.Now()
	res := &Result{
		Suite:    s.Suite,
		Scenario: s.Name,
		Matcher:  s.Matcher,
		Negated:  s.Negate,
		Want:     s.Want,
	}
	log = log.WithFields(
		logging.StringField("suite", s.Suite),
		logging.StringField("scenario", s.Name),
	)

	outcome, err := r.evaluate(ctx, s)
	res.Duration = time.Since(started)
	if err != nil {
		res.Status = StatusError
		res.Error = err.Error()
		log.Error("scenario errored", logging.ErrorField(err))
		return res
	}

	res.Outcome = WantPass
	if outcome.Failed {
		res.Outcome = WantFail
	}
	res.Message = outcome.Message

	switch {
	case res.Outcome != s.Want:
		res.Status = StatusFailed
	case s.Message != "" && s.Message != outcome.Message:
		res.Status = StatusFailed
	default:
		res.Status = StatusPassed
	}

	log.Debug("scenario evaluated",
		logging.StringField("outcome", string(res.Outcome)),
		logging.StringField("status", string(res.Status)),
		logging.DurationField("duration", res.Duration))
	return res
}

func (r *Runner) evaluate(ctx context.Context, s *Scenario) (matcher.Outcome, error) {
	m, err := r.registry.Get(s.Matcher)
	if err != nil {
		return matcher.Outcome{}, err
	}
	disposition, data, err := s.settlement()
	if err != nil {
		return matcher.Outcome{}, err
	}
	expected, err := s.expected()
	if err != nil {
		return matcher.Outcome{}, err
	}

	future := promise.NewFuture(r.scheduler)
	settle := func() {
		if disposition == matcher.Rejected {
			future.Reject(data)
			return
		}
		future.Resolve(data)
	}

	compare := m.Compare
	if s.Negate {
		compare = m.NegativeCompare
	}
	signal := matcher.NewSignal()
	compare(future, expected, signal)

	if s.Settle.Delay > 0 {
		timer := time.AfterFunc(s.Settle.Delay, settle)
		defer timer.Stop()
	} else {
		settle()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	outcome, err := signal.Wait(ctx)
	if err != nil {
		return matcher.Outcome{}, fmt.Errorf("no outcome within %s: %w", r.timeout, err)
	}
	return outcome, nil
}

package application

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hotbench/hotbench/internal/domain"
	"github.com/hotbench/hotbench/internal/ports"
)

// deterministicAttemptBudget caps attempts for failures unlikely to change
// on retry (malformed output, out-of-range scores): one retry, then the
// pair is permanently failed.
const deterministicAttemptBudget = 2

// EvaluationSet holds the outcome of one evaluation pass. Every (essay,
// judge) pair produces exactly one entry: either a validated result or a
// recorded failure, never both and never more than one of either.
type EvaluationSet struct {
	// results is keyed essay ID then judge ID.
	results map[string]map[string]domain.EvaluationResult

	// failures is keyed essay ID; each entry carries the final failure
	// for one pair after the retry budget was exhausted.
	failures map[string][]*domain.JudgeFailure

	// Attempted counts every (essay, judge) pair dispatched.
	Attempted int

	// Succeeded counts pairs that produced a validated result.
	Succeeded int
}

// Result returns the validated result for a pair, if one exists.
func (s *EvaluationSet) Result(essayID, judgeID string) (domain.EvaluationResult, bool) {
	row, ok := s.results[essayID]
	if !ok {
		return domain.EvaluationResult{}, false
	}
	res, ok := row[judgeID]
	return res, ok
}

// ResultsFor returns the essay's results ordered by the given roster and
// reports whether every rostered judge delivered one.
func (s *EvaluationSet) ResultsFor(essayID string, roster []string) ([]domain.EvaluationResult, bool) {
	results := make([]domain.EvaluationResult, 0, len(roster))
	complete := true
	for _, judgeID := range roster {
		res, ok := s.Result(essayID, judgeID)
		if !ok {
			complete = false
			continue
		}
		results = append(results, res)
	}
	return results, complete
}

// FailuresFor returns the recorded failures for one essay.
func (s *EvaluationSet) FailuresFor(essayID string) []*domain.JudgeFailure {
	return s.failures[essayID]
}

// Failures returns every recorded failure across the pass.
func (s *EvaluationSet) Failures() []*domain.JudgeFailure {
	var all []*domain.JudgeFailure
	for _, essayFailures := range s.failures {
		all = append(all, essayFailures...)
	}
	return all
}

// Orchestrator fans essays out to the judge roster with bounded
// concurrency, applying the per-pair retry policy. A failed pair never
// aborts the pass; the orchestrator records the failure and moves on.
type Orchestrator struct {
	judges         []ports.Judge
	rubric         domain.Rubric
	maxConcurrency int
	maxRetries     int
	baseDelay      time.Duration
	maxDelay       time.Duration
	passTimeout    time.Duration
	metrics        ports.MetricsCollector
	logger         *slog.Logger
}

// NewOrchestrator builds an orchestrator from a validated configuration
// and a resolved judge roster. The metrics collector may be nil.
func NewOrchestrator(cfg Config, judges []ports.Judge, metrics ports.MetricsCollector, logger *slog.Logger) (*Orchestrator, error) {
	if len(judges) == 0 {
		return nil, domain.ErrNoJudges
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		judges:         judges,
		rubric:         cfg.Rubric,
		maxConcurrency: cfg.MaxConcurrency,
		maxRetries:     cfg.MaxRetries,
		baseDelay:      cfg.RetryBaseDelay(),
		maxDelay:       cfg.RetryMaxDelay(),
		passTimeout:    cfg.EvaluationTimeout(),
		metrics:        metrics,
		logger:         logger,
	}, nil
}

// pairSlot is the single outcome slot for one (essay, judge) pair. Each
// worker goroutine owns exactly one slot, so completion order can never
// produce duplicate or misplaced entries.
type pairSlot struct {
	result  domain.EvaluationResult
	ok      bool
	failure *domain.JudgeFailure
}

// Run evaluates every essay against every rostered judge and returns the
// collected outcomes. The overall pass deadline, when configured, cancels
// outstanding calls; pairs interrupted that way are recorded as timeout
// failures while already-completed results are preserved.
func (o *Orchestrator) Run(ctx context.Context, essays []domain.Essay) (*EvaluationSet, error) {
	if len(essays) == 0 {
		return nil, domain.ErrNoEssays
	}

	if o.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.passTimeout)
		defer cancel()
	}

	slots := make([][]pairSlot, len(essays))
	for i := range slots {
		slots[i] = make([]pairSlot, len(o.judges))
	}

	start := time.Now()
	o.logger.Info("evaluation pass started",
		"essays", len(essays),
		"judges", len(o.judges),
		"max_concurrency", o.maxConcurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrency)

	for i := range essays {
		for j := range o.judges {
			i, j := i, j
			g.Go(func() error {
				slot := &slots[i][j]
				result, failure := o.evaluatePair(gctx, essays[i], o.judges[j])
				if failure != nil {
					slot.failure = failure
					o.recordOutcome(o.judges[j].ID(), string(failure.Reason))
					o.logger.Warn("judge evaluation failed",
						"essay", failure.EssayID,
						"judge", failure.JudgeID,
						"reason", failure.Reason,
						"attempts", failure.Attempts)
					return nil
				}
				slot.result = result
				slot.ok = true
				o.recordOutcome(o.judges[j].ID(), "ok")
				return nil
			})
		}
	}

	// Workers always return nil; Wait only surfaces a programming error.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &EvaluationSet{
		results:  make(map[string]map[string]domain.EvaluationResult, len(essays)),
		failures: make(map[string][]*domain.JudgeFailure),
	}
	for i, essay := range essays {
		for j := range o.judges {
			set.Attempted++
			slot := slots[i][j]
			if slot.ok {
				row, exists := set.results[essay.ID]
				if !exists {
					row = make(map[string]domain.EvaluationResult, len(o.judges))
					set.results[essay.ID] = row
				}
				row[o.judges[j].ID()] = slot.result
				set.Succeeded++
				continue
			}
			set.failures[essay.ID] = append(set.failures[essay.ID], slot.failure)
		}
	}

	o.logger.Info("evaluation pass finished",
		"attempted", set.Attempted,
		"succeeded", set.Succeeded,
		"failed", set.Attempted-set.Succeeded,
		"duration", time.Since(start))

	return set, nil
}

// evaluatePair runs one (essay, judge) evaluation under the retry policy.
// Transient failures (timeout, provider_error) are retried up to the
// configured budget with exponential backoff; deterministic failures get
// at most one retry. Exactly one of the return values is set.
func (o *Orchestrator) evaluatePair(ctx context.Context, essay domain.Essay, judge ports.Judge) (domain.EvaluationResult, *domain.JudgeFailure) {
	var last *domain.JudgeFailure

	for attempt := 1; ; attempt++ {
		result, err := judge.Evaluate(ctx, essay, o.rubric)
		if err == nil {
			return result, nil
		}

		last = o.classifyError(essay.ID, judge.ID(), err)
		last.Attempts = attempt

		if attempt >= o.attemptBudget(last.Reason) {
			return domain.EvaluationResult{}, last
		}

		delay := o.backoffDelay(attempt)
		o.logger.Debug("retrying judge evaluation",
			"essay", essay.ID,
			"judge", judge.ID(),
			"reason", last.Reason,
			"attempt", attempt,
			"delay", delay)

		select {
		case <-ctx.Done():
			// The pass deadline expired while waiting to retry; the pair
			// is recorded against the interruption, not the prior error.
			timeout := domain.NewJudgeFailure(essay.ID, judge.ID(), domain.FailureTimeout, ctx.Err())
			timeout.Attempts = attempt
			return domain.EvaluationResult{}, timeout
		case <-time.After(delay):
		}
	}
}

// attemptBudget returns the total number of attempts allowed for pairs
// failing with the given reason.
func (o *Orchestrator) attemptBudget(reason domain.FailureReason) int {
	if reason.Retryable() {
		return o.maxRetries + 1
	}
	return deterministicAttemptBudget
}

// classifyError normalizes a judge error into a JudgeFailure. Judges
// return typed failures; anything else is classified from the context
// state so the failure taxonomy stays closed. Typed failures are copied
// so attempt counting never mutates an error a judge may share.
func (o *Orchestrator) classifyError(essayID, judgeID string, err error) *domain.JudgeFailure {
	var failure *domain.JudgeFailure
	if errors.As(err, &failure) {
		copied := *failure
		copied.EssayID = essayID
		copied.JudgeID = judgeID
		return &copied
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewJudgeFailure(essayID, judgeID, domain.FailureTimeout, err)
	}
	return domain.NewJudgeFailure(essayID, judgeID, domain.FailureProviderError, err)
}

// backoffDelay computes the wait before the next attempt: exponential in
// the attempt number, capped at the configured maximum, with up to 25%
// jitter to spread retries from concurrent pairs.
func (o *Orchestrator) backoffDelay(attempt int) time.Duration {
	if o.baseDelay <= 0 {
		return 0
	}

	delay := float64(o.baseDelay) * math.Pow(2, float64(attempt-1))
	if max := float64(o.maxDelay); max > 0 && delay > max {
		delay = max
	}

	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}

func (o *Orchestrator) recordOutcome(judgeID, status string) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordCounter("judge_evaluations_total", 1, map[string]string{
		"judge":  judgeID,
		"status": status,
	})
}

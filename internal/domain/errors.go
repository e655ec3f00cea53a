package domain

import (
	"errors"
	"fmt"
)

// Common domain errors surfaced by the evaluation engine.
var (
	// ErrInvalidConfiguration indicates that configuration is invalid or
	// incomplete. Configuration errors are the only fatal errors in the
	// pipeline; they abort the run before any external call is made.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNoEssays indicates that the essay corpus was empty.
	ErrNoEssays = errors.New("no essays to evaluate")

	// ErrNoJudges indicates that the judge roster was empty.
	ErrNoJudges = errors.New("no judges configured")

	// ErrNoScores is returned when an aggregator receives no per-judge totals.
	ErrNoScores = errors.New("no scores provided for aggregation")
)

// FailureReason classifies why a single (essay, judge) evaluation failed.
// The reason determines the orchestrator's retry policy: transient reasons
// are retried with backoff, deterministic reasons at most once.
type FailureReason string

const (
	// FailureTimeout covers network timeouts and evaluation-pass deadline
	// expiry. Retryable up to the configured retry budget.
	FailureTimeout FailureReason = "timeout"

	// FailureMalformedOutput covers unparsable or non-conformant model
	// output. Retried at most once; identical input tends to reproduce it.
	FailureMalformedOutput FailureReason = "malformed_output"

	// FailureOutOfRange covers scores outside [0, category max] or missing
	// rubric categories. Retried at most once, like malformed output.
	FailureOutOfRange FailureReason = "out_of_range"

	// FailureProviderError covers all other provider-side failures
	// (server errors, rate limits, auth). Retryable with backoff.
	FailureProviderError FailureReason = "provider_error"
)

// Retryable reports whether the orchestrator may re-attempt a pair that
// failed with this reason beyond the single re-validation attempt.
func (r FailureReason) Retryable() bool {
	return r == FailureTimeout || r == FailureProviderError
}

// JudgeFailure records the terminal failure of one (essay, judge) pair.
// It is data as much as error: the orchestrator collects these instead of
// propagating them, so one failed pair never aborts the rest of the pass.
type JudgeFailure struct {
	// EssayID identifies the essay that could not be scored.
	EssayID string `json:"essay_id"`

	// JudgeID identifies the judge whose evaluation failed.
	JudgeID string `json:"judge_id"`

	// Reason classifies the failure for retry policy and reporting.
	Reason FailureReason `json:"reason"`

	// Attempts counts how many times the pair was tried before giving up.
	Attempts int `json:"attempts"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (f *JudgeFailure) Error() string {
	msg := fmt.Sprintf("judge %s failed on essay %s: %s (attempts=%d)",
		f.JudgeID, f.EssayID, f.Reason, f.Attempts)
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (f *JudgeFailure) Unwrap() error { return f.Err }

// NewJudgeFailure creates a JudgeFailure for the given pair and reason.
func NewJudgeFailure(essayID, judgeID string, reason FailureReason, err error) *JudgeFailure {
	return &JudgeFailure{
		EssayID: essayID,
		JudgeID: judgeID,
		Reason:  reason,
		Err:     err,
	}
}

// MetaAnalysisError indicates that the meta-analysis pass failed.
// It is never fatal: the consolidated results remain valid and the failure
// is attached to the final report as a warning.
type MetaAnalysisError struct {
	// Stage describes where the analysis failed ("request", "parse").
	Stage string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *MetaAnalysisError) Error() string {
	return fmt.Sprintf("meta-analysis failed during %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MetaAnalysisError) Unwrap() error { return e.Err }

// Package ports defines the interfaces that connect the orchestration
// layer to the infrastructure layer. These contracts enable dependency
// inversion: the orchestrator depends only on this package, and provider
// adapters plug in behind it.
package ports

import (
	"context"

	"github.com/hotbench/hotbench/internal/domain"
)

// Judge scores one essay against the rubric and returns a validated result.
// Implementations wrap a single external LLM provider call per evaluation
// and must be stateless and safe for concurrent use; the orchestrator
// invokes the same judge for many essays in parallel.
//
// Evaluate either returns a result conforming to the rubric or an error
// that is (or wraps) a *domain.JudgeFailure carrying one of the defined
// failure reasons. Out-of-range scores and missing categories are
// validation failures, never silently clamped.
type Judge interface {
	// ID returns the unique roster identifier for this judge.
	ID() string

	// Evaluate scores the essay against the rubric.
	// It respects context cancellation and returns promptly when the
	// evaluation pass deadline expires.
	Evaluate(ctx context.Context, essay domain.Essay, rubric domain.Rubric) (domain.EvaluationResult, error)
}

// MetaAnalyzer is the judge-like collaborator for the cross-judge analysis
// pass. Unlike Judge it consumes the consolidated dataset in a single call,
// not raw essays, and its failure degrades the run instead of aborting it.
type MetaAnalyzer interface {
	// Analyze produces a structured report from the ranked consolidated
	// scores and precomputed corpus statistics. Errors are (or wrap) a
	// *domain.MetaAnalysisError.
	Analyze(ctx context.Context, consolidated []domain.ConsolidatedScore, stats domain.CorpusStats) (domain.MetaAnalysisReport, error)
}

package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/hotbench/hotbench/internal/domain"
	"github.com/hotbench/hotbench/internal/ports"
)

// JudgeOutcome is one scripted attempt outcome for a (essay, judge) pair:
// either category scores to validate or an error to return.
type JudgeOutcome struct {
	Scores map[string]int
	Err    error
}

// ScriptedJudge implements ports.Judge with per-essay attempt scripts,
// enabling precise retry and partial-failure scenarios in tests. Each
// Evaluate call for an essay consumes the next outcome in that essay's
// script; the final outcome repeats once a script is exhausted. Safe for
// concurrent use.
type ScriptedJudge struct {
	mu sync.Mutex

	id      string
	rubric  domain.Rubric
	scripts map[string][]JudgeOutcome
	calls   map[string]int
}

// NewScriptedJudge creates a judge that validates scripted scores against
// the given rubric.
func NewScriptedJudge(id string, rubric domain.Rubric) *ScriptedJudge {
	return &ScriptedJudge{
		id:      id,
		rubric:  rubric,
		scripts: make(map[string][]JudgeOutcome),
		calls:   make(map[string]int),
	}
}

// ScriptEssay sets the attempt outcomes for one essay.
func (j *ScriptedJudge) ScriptEssay(essayID string, outcomes ...JudgeOutcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.scripts[essayID] = outcomes
}

// ScoreAll makes the judge award the same scores to every essay not
// explicitly scripted.
func (j *ScriptedJudge) ScoreAll(scores map[string]int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.scripts[""] = []JudgeOutcome{{Scores: scores}}
}

// Attempts returns how many Evaluate calls were made for an essay.
func (j *ScriptedJudge) Attempts(essayID string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls[essayID]
}

// ID returns the judge's roster identifier.
func (j *ScriptedJudge) ID() string { return j.id }

// Evaluate consumes the next scripted outcome for the essay.
func (j *ScriptedJudge) Evaluate(ctx context.Context, essay domain.Essay, rubric domain.Rubric) (domain.EvaluationResult, error) {
	if ctx.Err() != nil {
		return domain.EvaluationResult{}, domain.NewJudgeFailure(essay.ID, j.id, domain.FailureTimeout, ctx.Err())
	}

	j.mu.Lock()
	attempt := j.calls[essay.ID]
	j.calls[essay.ID]++

	script, ok := j.scripts[essay.ID]
	if !ok {
		script = j.scripts[""]
	}
	j.mu.Unlock()

	if len(script) == 0 {
		return domain.EvaluationResult{}, domain.NewJudgeFailure(essay.ID, j.id, domain.FailureProviderError,
			fmt.Errorf("no scripted outcome for essay %q", essay.ID))
	}

	if attempt >= len(script) {
		attempt = len(script) - 1
	}
	outcome := script[attempt]
	if outcome.Err != nil {
		return domain.EvaluationResult{}, outcome.Err
	}
	return domain.NewEvaluationResult(essay.ID, j.id, outcome.Scores, "scripted rationale for testing", rubric)
}

// Verify interface compliance at compile time.
var _ ports.Judge = (*ScriptedJudge)(nil)

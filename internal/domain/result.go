package domain

import (
	"fmt"
)

// EvaluationResult is one judge's validated scoring of one essay.
// Results are immutable once produced: the constructor validates every
// score against the rubric and computes the total, and callers treat the
// value as read-only from then on.
type EvaluationResult struct {
	// EssayID identifies the scored essay.
	EssayID string `json:"essay_id"`

	// JudgeID identifies the judge that produced this result.
	JudgeID string `json:"judge_id"`

	// Scores maps rubric category names to awarded points.
	// Every configured category is present; scores respect category maxima.
	Scores map[string]int `json:"scores"`

	// Rationale is the judge's free-text justification for the scores.
	Rationale string `json:"rationale"`

	// Total is the sum of all category scores, computed at construction.
	Total int `json:"total"`
}

// NewEvaluationResult validates raw category scores against the rubric and
// returns an immutable result. Missing categories and scores outside
// [0, category max] are rejected with a FailureOutOfRange JudgeFailure so
// non-conformant model output is never silently clamped.
func NewEvaluationResult(essayID, judgeID string, scores map[string]int, rationale string, rubric Rubric) (EvaluationResult, error) {
	total := 0
	validated := make(map[string]int, len(rubric))

	for _, cat := range rubric {
		score, ok := scores[cat.Name]
		if !ok {
			return EvaluationResult{}, NewJudgeFailure(essayID, judgeID, FailureOutOfRange,
				fmt.Errorf("missing rubric category %q", cat.Name))
		}
		if score < 0 || score > cat.MaxPoints {
			return EvaluationResult{}, NewJudgeFailure(essayID, judgeID, FailureOutOfRange,
				fmt.Errorf("score %d for category %q not in range [0, %d]", score, cat.Name, cat.MaxPoints))
		}
		validated[cat.Name] = score
		total += score
	}

	for name := range scores {
		if _, ok := rubric.Category(name); !ok {
			return EvaluationResult{}, NewJudgeFailure(essayID, judgeID, FailureOutOfRange,
				fmt.Errorf("unknown rubric category %q in response", name))
		}
	}

	return EvaluationResult{
		EssayID:   essayID,
		JudgeID:   judgeID,
		Scores:    validated,
		Rationale: rationale,
		Total:     total,
	}, nil
}

// Score returns the points awarded in the named category, or zero when the
// category does not exist.
func (r EvaluationResult) Score(category string) int {
	return r.Scores[category]
}

// ConsolidatedScore merges all judges' results for one essay.
// Results are ordered by the configured judge roster, never by completion
// order. An essay missing any judge's terminal result is marked incomplete
// and excluded from ranking rather than being assigned a synthetic score.
type ConsolidatedScore struct {
	// EssayID identifies the essay.
	EssayID string `json:"essay_id"`

	// Results holds one validated result per judge, in roster order.
	// Incomplete essays carry only the results that were obtained.
	Results []EvaluationResult `json:"results"`

	// Combined is the aggregate of per-judge totals, computed by the
	// configured aggregation function. Zero when incomplete.
	Combined float64 `json:"combined"`

	// Rank is the 1-based position in the ranking. Zero when incomplete.
	Rank int `json:"rank,omitempty"`

	// Incomplete marks essays missing one or more judge results.
	Incomplete bool `json:"incomplete,omitempty"`

	// Failures lists the terminal failures that made the essay incomplete.
	Failures []*JudgeFailure `json:"failures,omitempty"`
}

// CategoryScore sums the points awarded for a category across all judges.
// Used for tie-breaking on the highest-weighted category.
func (c ConsolidatedScore) CategoryScore(category string) int {
	sum := 0
	for _, res := range c.Results {
		sum += res.Score(category)
	}
	return sum
}

// JudgeTotals returns the per-judge totals in roster order.
func (c ConsolidatedScore) JudgeTotals() []int {
	totals := make([]int, len(c.Results))
	for i, res := range c.Results {
		totals[i] = res.Total
	}
	return totals
}

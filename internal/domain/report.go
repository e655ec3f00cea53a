package domain

import (
	"time"
)

// MetaAnalysisReport is the structured outcome of the cross-judge
// meta-analysis pass. It is derived solely from consolidated scores and
// corpus statistics; raw essay text never reaches the analyzer.
type MetaAnalysisReport struct {
	// WinnerPatterns describes what the top-ranked essays had in common.
	WinnerPatterns string `json:"winner_patterns"`

	// JudgeConsistency describes agreement and disagreement across judges.
	JudgeConsistency string `json:"judge_consistency"`

	// RubricEffectiveness describes how well the rubric discriminated
	// between submissions.
	RubricEffectiveness string `json:"rubric_effectiveness"`

	// Recommendations lists suggested improvements for future contests.
	Recommendations []string `json:"recommendations"`

	// Stats carries the locally computed statistics the narrative is
	// grounded on.
	Stats CorpusStats `json:"stats"`

	// GeneratedAt records when the analysis completed.
	GeneratedAt time.Time `json:"generated_at"`
}

// RunReport is the engine's final structured payload, handed to an external
// renderer. It always contains the full ranking and per-judge breakdowns;
// the meta-analysis section is present only when that pass succeeded.
type RunReport struct {
	// Ranked lists complete essays in rank order, ties already broken.
	Ranked []ConsolidatedScore `json:"ranked"`

	// Winners holds the top-N ranked essays per the configured winner count.
	Winners []ConsolidatedScore `json:"winners"`

	// Incomplete lists essays excluded from ranking, each with its partial
	// results and the failures that excluded it.
	Incomplete []ConsolidatedScore `json:"incomplete,omitempty"`

	// Disqualified lists essays rejected before dispatch (word limit).
	Disqualified []Essay `json:"disqualified,omitempty"`

	// Failures lists every terminal (essay, judge) failure with its reason.
	Failures []*JudgeFailure `json:"failures,omitempty"`

	// Meta is the meta-analysis report, nil when that pass failed.
	Meta *MetaAnalysisReport `json:"meta,omitempty"`

	// Warnings carries non-fatal degradations, such as a failed
	// meta-analysis pass.
	Warnings []string `json:"warnings,omitempty"`

	// StartedAt and FinishedAt bound the evaluation pass.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

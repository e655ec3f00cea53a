package judges

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hotbench/hotbench/internal/domain"
	"github.com/hotbench/hotbench/internal/ports"
)

var _ ports.MetaAnalyzer = (*MetaAnalyzer)(nil)

// metaSystemPrompt frames the analyzer as an educational researcher, as a
// counterpart to the scoring judges' personas.
const metaSystemPrompt = "You are an expert educational researcher and statistician analyzing " +
	"essay contest results. Provide thorough, insightful analysis with specific " +
	"examples and actionable recommendations."

// metaResponse is the JSON structure the analysis call must return.
type metaResponse struct {
	WinnerPatterns      string   `json:"winner_patterns" validate:"required"`
	JudgeConsistency    string   `json:"judge_consistency" validate:"required"`
	RubricEffectiveness string   `json:"rubric_effectiveness" validate:"required"`
	Recommendations     []string `json:"recommendations" validate:"required,min=1"`
}

// MetaAnalyzer produces the cross-judge analysis pass with a single LLM
// call over the consolidated dataset. It never sees raw essay text; the
// prompt is built from consolidated scores and corpus statistics only.
type MetaAnalyzer struct {
	client      ports.LLMClient
	temperature float64
	maxTokens   int
}

// NewMetaAnalyzer creates a meta-analyzer backed by the given LLM client.
func NewMetaAnalyzer(client ports.LLMClient) (*MetaAnalyzer, error) {
	if client == nil {
		return nil, fmt.Errorf("meta-analyzer: LLM client cannot be nil")
	}
	return &MetaAnalyzer{
		client:      client,
		temperature: 0.7,
		maxTokens:   3000,
	}, nil
}

// Analyze sends the consolidated dataset summary to the LLM and parses the
// structured report. All failures return a *domain.MetaAnalysisError; the
// caller treats them as warnings, never as pipeline-aborting errors.
func (a *MetaAnalyzer) Analyze(ctx context.Context, consolidated []domain.ConsolidatedScore, stats domain.CorpusStats) (domain.MetaAnalysisReport, error) {
	prompt := a.buildPrompt(consolidated, stats)

	options := map[string]any{
		"temperature": a.temperature,
		"max_tokens":  a.maxTokens,
		"system":      metaSystemPrompt,
		"json_mode":   true,
	}

	response, err := a.client.Complete(ctx, prompt, options)
	if err != nil {
		return domain.MetaAnalysisReport{}, &domain.MetaAnalysisError{Stage: "request", Err: err}
	}

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return domain.MetaAnalysisReport{}, &domain.MetaAnalysisError{
			Stage: "parse",
			Err:   fmt.Errorf("no JSON object found in response (%d chars)", len(response)),
		}
	}

	var parsed metaResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return domain.MetaAnalysisReport{}, &domain.MetaAnalysisError{Stage: "parse", Err: err}
	}
	if err := validate.Struct(parsed); err != nil {
		return domain.MetaAnalysisReport{}, &domain.MetaAnalysisError{Stage: "parse", Err: err}
	}

	return domain.MetaAnalysisReport{
		WinnerPatterns:      parsed.WinnerPatterns,
		JudgeConsistency:    parsed.JudgeConsistency,
		RubricEffectiveness: parsed.RubricEffectiveness,
		Recommendations:     parsed.Recommendations,
		Stats:               stats,
		GeneratedAt:         time.Now().UTC(),
	}, nil
}

// buildPrompt renders the consolidated dataset and statistics into the
// analysis prompt. Rationales are truncated to limit token usage.
func (a *MetaAnalyzer) buildPrompt(consolidated []domain.ConsolidatedScore, stats domain.CorpusStats) string {
	var b strings.Builder

	b.WriteString("ESSAY CONTEST - CONSOLIDATED JUDGING DATA\n\n")
	fmt.Fprintf(&b, "Complete essays ranked: %d\n", stats.EssayCount)
	fmt.Fprintf(&b, "Essays excluded as incomplete: %d\n", stats.IncompleteCount)
	if len(stats.IncompleteEssays) > 0 {
		fmt.Fprintf(&b, "Excluded essay IDs: %s\n", strings.Join(stats.IncompleteEssays, ", "))
	}
	b.WriteString("\n")

	b.WriteString("SCORE DISTRIBUTIONS:\n")
	fmt.Fprintf(&b, "  combined totals: mean=%.2f stddev=%.2f min=%.0f max=%.0f\n",
		stats.Combined.Mean, stats.Combined.StdDev, stats.Combined.Min, stats.Combined.Max)
	for name, dist := range stats.PerCategory {
		fmt.Fprintf(&b, "  category %s: mean=%.2f variance=%.2f\n", name, dist.Mean, dist.Variance)
	}
	for id, dist := range stats.PerJudge {
		fmt.Fprintf(&b, "  judge %s totals: mean=%.2f stddev=%.2f\n", id, dist.Mean, dist.StdDev)
	}

	b.WriteString("\nRANKED ESSAYS:\n")
	for _, cs := range consolidated {
		if cs.Incomplete {
			continue
		}
		fmt.Fprintf(&b, "\n#%d %s (combined %.1f)\n", cs.Rank, cs.EssayID, cs.Combined)
		for _, res := range cs.Results {
			fmt.Fprintf(&b, "  judge %s: total=%d scores=%v\n", res.JudgeID, res.Total, res.Scores)
			fmt.Fprintf(&b, "  rationale: %s\n", truncate(res.Rationale, 200))
		}
	}

	b.WriteString(`
Analyze this judging data and respond ONLY with a JSON object of this shape:
{
  "winner_patterns": "<what the top-ranked essays had in common>",
  "judge_consistency": "<how consistently the judges scored, notable disagreements>",
  "rubric_effectiveness": "<how well the rubric discriminated between essays>",
  "recommendations": ["<improvement for future contests>", "..."]
}`)

	return b.String()
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

package judges

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotbench/hotbench/internal/domain"
	"github.com/hotbench/hotbench/internal/testutils"
)

const validMetaResponse = `{
  "winner_patterns": "Top essays paired strong theses with primary sources.",
  "judge_consistency": "Judges agreed on the top two, diverged on creativity.",
  "rubric_effectiveness": "The effort category rarely discriminated.",
  "recommendations": ["Split scholarship into sourcing and accuracy."]
}`

func metaFixture(t *testing.T) ([]domain.ConsolidatedScore, domain.CorpusStats) {
	t.Helper()
	rubric := domain.DefaultRubric()

	result, err := domain.NewEvaluationResult("Jane Doe", "judge-1", map[string]int{
		"effectiveness": 20, "creativity": 18, "scholarship": 22, "effort": 9,
	}, "A persuasive essay with meticulous sourcing throughout the argument.", rubric)
	require.NoError(t, err)

	consolidated := []domain.ConsolidatedScore{
		{EssayID: "Jane Doe", Results: []domain.EvaluationResult{result}, Combined: 69, Rank: 1},
		{EssayID: "John Roe", Incomplete: true},
	}
	return consolidated, domain.ComputeCorpusStats(consolidated, rubric)
}

func TestMetaAnalyzerAnalyze(t *testing.T) {
	consolidated, stats := metaFixture(t)

	client := testutils.NewMockLLMClient("mock-model")
	client.AddResponse("", validMetaResponse)

	analyzer, err := NewMetaAnalyzer(client)
	require.NoError(t, err)

	report, err := analyzer.Analyze(context.Background(), consolidated, stats)
	require.NoError(t, err)

	assert.Contains(t, report.WinnerPatterns, "primary sources")
	assert.Len(t, report.Recommendations, 1)
	assert.Equal(t, stats, report.Stats)
	assert.False(t, report.GeneratedAt.IsZero())

	// The prompt carries rankings and rationales but never essay text,
	// and incomplete essays are left out.
	require.Len(t, client.Calls, 1)
	prompt := client.Calls[0]
	assert.Contains(t, prompt, "#1 Jane Doe")
	assert.Contains(t, prompt, "meticulous sourcing")
	assert.NotContains(t, prompt, "#0 John Roe")

	// Excluded essays are named, not just counted.
	assert.Contains(t, prompt, "Excluded essay IDs: John Roe")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short string untouched", in: "brief", n: 10, want: "brief"},
		{name: "ascii cut", in: "abcdef", n: 3, want: "abc..."},
		{name: "cut inside multibyte rune backs up", in: "abécd", n: 3, want: "ab..."},
		{name: "cut on rune boundary", in: "abécd", n: 4, want: "abé..."},
		{name: "cjk", in: "日本語", n: 4, want: "日..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestMetaAnalyzerRequestFailure(t *testing.T) {
	consolidated, stats := metaFixture(t)

	client := testutils.NewMockLLMClient("mock-model")
	client.SetError(errors.New("connection refused"))

	analyzer, err := NewMetaAnalyzer(client)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), consolidated, stats)
	require.Error(t, err)

	var metaErr *domain.MetaAnalysisError
	require.ErrorAs(t, err, &metaErr)
	assert.Equal(t, "request", metaErr.Stage)
}

func TestMetaAnalyzerParseFailure(t *testing.T) {
	consolidated, stats := metaFixture(t)

	tests := []struct {
		name     string
		response string
	}{
		{name: "no json", response: "The winners were simply better."},
		{name: "missing fields", response: `{"winner_patterns": "strong openings"}`},
		{name: "empty recommendations", response: `{"winner_patterns": "a", "judge_consistency": "b", "rubric_effectiveness": "c", "recommendations": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testutils.NewMockLLMClient("mock-model")
			client.AddResponse("", tt.response)

			analyzer, err := NewMetaAnalyzer(client)
			require.NoError(t, err)

			_, err = analyzer.Analyze(context.Background(), consolidated, stats)
			require.Error(t, err)

			var metaErr *domain.MetaAnalysisError
			require.ErrorAs(t, err, &metaErr)
			assert.Equal(t, "parse", metaErr.Stage)
		})
	}
}

func TestNewMetaAnalyzerNilClient(t *testing.T) {
	_, err := NewMetaAnalyzer(nil)
	assert.Error(t, err)
}

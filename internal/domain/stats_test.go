package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consolidatedFixture(t *testing.T, essayID string, judgeScores map[string]map[string]int) ConsolidatedScore {
	t.Helper()
	rubric := DefaultRubric()

	cs := ConsolidatedScore{EssayID: essayID}
	combined := 0
	for _, judgeID := range []string{"judge-1", "judge-2"} {
		scores, ok := judgeScores[judgeID]
		if !ok {
			continue
		}
		result, err := NewEvaluationResult(essayID, judgeID, scores, "r", rubric)
		require.NoError(t, err)
		cs.Results = append(cs.Results, result)
		combined += result.Total
	}
	cs.Combined = float64(combined)
	return cs
}

func TestComputeCorpusStats(t *testing.T) {
	rubric := DefaultRubric()

	a := consolidatedFixture(t, "A", map[string]map[string]int{
		"judge-1": {"effectiveness": 20, "creativity": 20, "scholarship": 20, "effort": 10},
		"judge-2": {"effectiveness": 10, "creativity": 10, "scholarship": 10, "effort": 0},
	})
	b := consolidatedFixture(t, "B", map[string]map[string]int{
		"judge-1": {"effectiveness": 10, "creativity": 10, "scholarship": 10, "effort": 10},
		"judge-2": {"effectiveness": 20, "creativity": 20, "scholarship": 20, "effort": 10},
	})
	incomplete := ConsolidatedScore{EssayID: "C", Incomplete: true}

	stats := ComputeCorpusStats([]ConsolidatedScore{a, b, incomplete}, rubric)

	assert.Equal(t, 2, stats.EssayCount)
	assert.Equal(t, 1, stats.IncompleteCount)
	assert.Equal(t, []string{"C"}, stats.IncompleteEssays)

	// A: 70+30=100, B: 40+70=110.
	assert.Equal(t, 2, stats.Combined.Count)
	assert.InDelta(t, 105.0, stats.Combined.Mean, 1e-9)
	assert.InDelta(t, 100.0, stats.Combined.Min, 1e-9)
	assert.InDelta(t, 110.0, stats.Combined.Max, 1e-9)

	// Four observations per category (2 essays x 2 judges).
	eff := stats.PerCategory["effectiveness"]
	assert.Equal(t, 4, eff.Count)
	assert.InDelta(t, 15.0, eff.Mean, 1e-9)

	// Judge totals: judge-1 awarded 70 and 40, judge-2 awarded 30 and 70.
	j1 := stats.PerJudge["judge-1"]
	assert.Equal(t, 2, j1.Count)
	assert.InDelta(t, 55.0, j1.Mean, 1e-9)
	assert.InDelta(t, 15.0, j1.StdDev, 1e-9)
}

func TestComputeCorpusStatsEmpty(t *testing.T) {
	stats := ComputeCorpusStats(nil, DefaultRubric())

	assert.Equal(t, 0, stats.EssayCount)
	assert.Equal(t, 0, stats.Combined.Count)
	assert.Empty(t, stats.PerCategory)
	assert.Empty(t, stats.PerJudge)
}

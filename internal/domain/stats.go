package domain

import (
	"math"
)

// DistributionStats summarizes a set of observed scores.
type DistributionStats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// CorpusStats carries the aggregate statistics fed to the meta-analysis
// pass. It is derived solely from consolidated scores, never from raw
// essay text.
type CorpusStats struct {
	// EssayCount is the number of complete, ranked essays.
	EssayCount int `json:"essay_count"`

	// IncompleteCount is the number of essays excluded from ranking.
	IncompleteCount int `json:"incomplete_count"`

	// IncompleteEssays lists the excluded essay IDs so downstream
	// analysis can name them, not just count them.
	IncompleteEssays []string `json:"incomplete_essays,omitempty"`

	// Combined summarizes the distribution of combined totals.
	Combined DistributionStats `json:"combined"`

	// PerCategory summarizes each rubric category's scores across all
	// judges and essays, exposing which criteria discriminate most.
	PerCategory map[string]DistributionStats `json:"per_category"`

	// PerJudge summarizes each judge's per-essay totals, exposing
	// systematically harsh or lenient judges.
	PerJudge map[string]DistributionStats `json:"per_judge"`
}

// ComputeCorpusStats derives cross-judge statistics from consolidated
// scores. Incomplete essays contribute to IncompleteCount only; partial
// results are not mixed into distributions to avoid skew.
func ComputeCorpusStats(consolidated []ConsolidatedScore, rubric Rubric) CorpusStats {
	stats := CorpusStats{
		PerCategory: make(map[string]DistributionStats, len(rubric)),
		PerJudge:    make(map[string]DistributionStats),
	}

	var combined []float64
	category := make(map[string][]float64, len(rubric))
	judge := make(map[string][]float64)

	for _, cs := range consolidated {
		if cs.Incomplete {
			stats.IncompleteCount++
			stats.IncompleteEssays = append(stats.IncompleteEssays, cs.EssayID)
			continue
		}
		stats.EssayCount++
		combined = append(combined, cs.Combined)

		for _, res := range cs.Results {
			judge[res.JudgeID] = append(judge[res.JudgeID], float64(res.Total))
			for _, cat := range rubric {
				category[cat.Name] = append(category[cat.Name], float64(res.Score(cat.Name)))
			}
		}
	}

	stats.Combined = summarize(combined)
	for name, values := range category {
		stats.PerCategory[name] = summarize(values)
	}
	for id, values := range judge {
		stats.PerJudge[id] = summarize(values)
	}

	return stats
}

// summarize computes population statistics for the given values.
func summarize(values []float64) DistributionStats {
	n := len(values)
	if n == 0 {
		return DistributionStats{}
	}

	sum := 0.0
	min, max := values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	return DistributionStats{
		Count:    n,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Min:      min,
		Max:      max,
	}
}

package application

import (
	"sort"

	"github.com/hotbench/hotbench/internal/domain"
)

// Consolidator merges per-judge results into consolidated scores and
// produces the deterministic ranking. Essays missing any judge result
// are carried separately and never ranked or synthetically scored.
type Consolidator struct {
	rubric     domain.Rubric
	roster     []string
	aggregator domain.Aggregator
	numWinners int
}

// NewConsolidator builds a consolidator for the given rubric and judge
// roster. The aggregation name follows the configuration ("sum" by
// default, "mean" optionally).
func NewConsolidator(rubric domain.Rubric, roster []string, aggregation string, numWinners int) (*Consolidator, error) {
	agg, err := domain.NewAggregator(aggregation)
	if err != nil {
		return nil, err
	}
	if numWinners < 1 {
		numWinners = DefaultNumWinners
	}
	return &Consolidator{
		rubric:     rubric,
		roster:     roster,
		aggregator: agg,
		numWinners: numWinners,
	}, nil
}

// Consolidation is the ranked outcome of one pass.
type Consolidation struct {
	// Ranked holds complete essays in final rank order, ranks assigned.
	Ranked []domain.ConsolidatedScore

	// Incomplete holds essays missing one or more judge results, with
	// their recorded failures attached. They carry no rank and no
	// combined score.
	Incomplete []domain.ConsolidatedScore
}

// Winners returns the top-ranked essays, up to the configured count.
func (c *Consolidator) Winners(cons *Consolidation) []domain.ConsolidatedScore {
	n := c.numWinners
	if n > len(cons.Ranked) {
		n = len(cons.Ranked)
	}
	return cons.Ranked[:n]
}

// Consolidate merges the evaluation set into per-essay consolidated
// scores and ranks the complete ones. Ties are broken first by the score
// in the highest-weighted rubric category, then by essay ID, so the
// ranking is stable across runs. A set with no complete essays yields an
// empty ranking with every essay carried as incomplete; the pass degrades
// rather than aborts.
func (c *Consolidator) Consolidate(set *EvaluationSet, essays []domain.Essay) (*Consolidation, error) {
	cons := &Consolidation{}
	if set == nil {
		set = &EvaluationSet{}
	}
	for _, essay := range essays {
		results, complete := set.ResultsFor(essay.ID, c.roster)
		score := domain.ConsolidatedScore{
			EssayID: essay.ID,
			Results: results,
		}

		if !complete {
			score.Incomplete = true
			score.Failures = set.FailuresFor(essay.ID)
			cons.Incomplete = append(cons.Incomplete, score)
			continue
		}

		combined, err := c.aggregator.Combine(score.JudgeTotals())
		if err != nil {
			return nil, err
		}
		score.Combined = combined
		cons.Ranked = append(cons.Ranked, score)
	}

	tieBreak := c.rubric.HighestWeighted().Name
	sort.SliceStable(cons.Ranked, func(i, j int) bool {
		a, b := cons.Ranked[i], cons.Ranked[j]
		if a.Combined != b.Combined {
			return a.Combined > b.Combined
		}
		if as, bs := a.CategoryScore(tieBreak), b.CategoryScore(tieBreak); as != bs {
			return as > bs
		}
		return a.EssayID < b.EssayID
	})

	for i := range cons.Ranked {
		cons.Ranked[i].Rank = i + 1
	}

	return cons, nil
}

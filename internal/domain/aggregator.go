package domain

import (
	"fmt"
)

// Aggregator combines per-judge totals for one essay into a single combined
// score. Implementations must be deterministic and stateless; the
// consolidator applies the same aggregator to every complete essay.
type Aggregator interface {
	// Name returns the configuration identifier for this strategy.
	Name() string

	// Combine reduces per-judge totals to one combined score.
	// Returns ErrNoScores when totals is empty.
	Combine(totals []int) (float64, error)
}

// SumAggregator combines totals by unweighted summation.
// This is the default aggregation function.
type SumAggregator struct{}

// Name returns "sum".
func (SumAggregator) Name() string { return "sum" }

// Combine returns the sum of all per-judge totals.
func (SumAggregator) Combine(totals []int) (float64, error) {
	if len(totals) == 0 {
		return 0, ErrNoScores
	}
	sum := 0
	for _, t := range totals {
		sum += t
	}
	return float64(sum), nil
}

// MeanAggregator combines totals by arithmetic mean, useful when runs with
// different roster sizes must remain comparable.
type MeanAggregator struct{}

// Name returns "mean".
func (MeanAggregator) Name() string { return "mean" }

// Combine returns the arithmetic mean of all per-judge totals.
func (MeanAggregator) Combine(totals []int) (float64, error) {
	if len(totals) == 0 {
		return 0, ErrNoScores
	}
	sum := 0
	for _, t := range totals {
		sum += t
	}
	return float64(sum) / float64(len(totals)), nil
}

// NewAggregator resolves a configured aggregation name to its strategy.
// An empty name selects the default sum aggregation.
func NewAggregator(name string) (Aggregator, error) {
	switch name {
	case "", "sum":
		return SumAggregator{}, nil
	case "mean":
		return MeanAggregator{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown aggregation function %q", ErrInvalidConfiguration, name)
	}
}

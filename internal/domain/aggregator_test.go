package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAggregator(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  bool
	}{
		{name: "empty defaults to sum", input: "", wantName: "sum"},
		{name: "sum", input: "sum", wantName: "sum"},
		{name: "mean", input: "mean", wantName: "mean"},
		{name: "unknown", input: "median", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := NewAggregator(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, agg.Name())
		})
	}
}

func TestSumAggregator(t *testing.T) {
	combined, err := SumAggregator{}.Combine([]int{69, 42, 55})
	require.NoError(t, err)
	assert.Equal(t, 166.0, combined)

	_, err = SumAggregator{}.Combine(nil)
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestMeanAggregator(t *testing.T) {
	combined, err := MeanAggregator{}.Combine([]int{60, 70})
	require.NoError(t, err)
	assert.Equal(t, 65.0, combined)

	_, err = MeanAggregator{}.Combine(nil)
	assert.ErrorIs(t, err, ErrNoScores)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRubricValidate(t *testing.T) {
	tests := []struct {
		name    string
		rubric  Rubric
		wantErr bool
	}{
		{
			name:   "default rubric is valid",
			rubric: DefaultRubric(),
		},
		{
			name:    "empty rubric",
			rubric:  Rubric{},
			wantErr: true,
		},
		{
			name: "duplicate category names",
			rubric: Rubric{
				{Name: "clarity", MaxPoints: 10},
				{Name: "clarity", MaxPoints: 20},
			},
			wantErr: true,
		},
		{
			name: "zero max points",
			rubric: Rubric{
				{Name: "clarity", MaxPoints: 0},
			},
			wantErr: true,
		},
		{
			name: "empty category name",
			rubric: Rubric{
				{Name: "", MaxPoints: 5},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rubric.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRubricMaxTotal(t *testing.T) {
	assert.Equal(t, 85, DefaultRubric().MaxTotal())
	assert.Equal(t, 0, Rubric{}.MaxTotal())
}

func TestRubricCategory(t *testing.T) {
	rubric := DefaultRubric()

	cat, ok := rubric.Category("creativity")
	require.True(t, ok)
	assert.Equal(t, 25, cat.MaxPoints)

	_, ok = rubric.Category("penmanship")
	assert.False(t, ok)
}

func TestRubricHighestWeighted(t *testing.T) {
	// Multiple categories share the maximal ceiling; the first in rubric
	// order wins so tie-breaking stays deterministic.
	assert.Equal(t, "effectiveness", DefaultRubric().HighestWeighted().Name)

	rubric := Rubric{
		{Name: "style", MaxPoints: 10},
		{Name: "argument", MaxPoints: 40},
		{Name: "sources", MaxPoints: 40},
	}
	assert.Equal(t, "argument", rubric.HighestWeighted().Name)
}

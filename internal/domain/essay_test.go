package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStudentName(t *testing.T) {
	tests := []struct {
		name string
		stem string
		want string
	}{
		{
			name: "camel case stem",
			stem: "johnSmith",
			want: "John Smith",
		},
		{
			name: "three name parts",
			stem: "maryJaneWatson",
			want: "Mary Jane Watson",
		},
		{
			name: "long first name truncated",
			stem: "extraordinarilyLongname",
			want: "Extraordina Longname",
		},
		{
			name: "single word falls back to title case",
			stem: "anonymous",
			want: "Anonymous",
		},
		{
			name: "underscore separator fallback",
			stem: "test_essay",
			want: "Test Essay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStudentName(tt.stem))
		})
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   \n\t  "))
	assert.Equal(t, 3, CountWords("one two three"))
	assert.Equal(t, 3, CountWords("  one\ntwo\t three  "))
}

func TestNewEssay(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		essay := NewEssay("janeDoe", "A short but complete essay.", 400)

		assert.Equal(t, "Jane Doe", essay.ID)
		assert.Equal(t, 5, essay.WordCount)
		assert.False(t, essay.Disqualified)
		assert.Empty(t, essay.DisqualificationReason)
	})

	t.Run("over limit is flagged not truncated", func(t *testing.T) {
		body := strings.Repeat("word ", 401)
		essay := NewEssay("janeDoe", body, 400)

		assert.True(t, essay.Disqualified)
		assert.Contains(t, essay.DisqualificationReason, "401/400")
		assert.Equal(t, 401, essay.WordCount)
		assert.Equal(t, 401, CountWords(essay.Body))
	})

	t.Run("zero limit disables disqualification", func(t *testing.T) {
		body := strings.Repeat("word ", 1000)
		essay := NewEssay("janeDoe", body, 0)

		assert.False(t, essay.Disqualified)
	})
}

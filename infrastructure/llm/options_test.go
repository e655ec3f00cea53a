package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := ParseRequestOptions(nil, "gpt-4o-mini")

		assert.Equal(t, "gpt-4o-mini", opts.Model)
		assert.Equal(t, DefaultMaxTokens, opts.MaxTokens)
		assert.Nil(t, opts.Temperature)
		assert.Empty(t, opts.System)
		assert.False(t, opts.JSONMode)
	})

	t.Run("full set", func(t *testing.T) {
		opts := ParseRequestOptions(map[string]any{
			"model":       "gpt-4o",
			"max_tokens":  2000,
			"temperature": 0.7,
			"system":      "You are a judge.",
			"json_mode":   true,
			"top_p":       0.9,
		}, "gpt-4o-mini")

		assert.Equal(t, "gpt-4o", opts.Model)
		assert.Equal(t, 2000, opts.MaxTokens)
		require.NotNil(t, opts.Temperature)
		assert.Equal(t, 0.7, *opts.Temperature)
		assert.Equal(t, "You are a judge.", opts.System)
		assert.True(t, opts.JSONMode)
		assert.Equal(t, 0.9, opts.Extra["top_p"])
	})

	t.Run("zero temperature kept", func(t *testing.T) {
		opts := ParseRequestOptions(map[string]any{"temperature": 0.0}, "m")
		require.NotNil(t, opts.Temperature)
		assert.Equal(t, 0.0, *opts.Temperature)
	})

	t.Run("invalid values fall back", func(t *testing.T) {
		opts := ParseRequestOptions(map[string]any{
			"model":       "",
			"max_tokens":  -5,
			"temperature": 3.5,
		}, "fallback-model")

		assert.Equal(t, "fallback-model", opts.Model)
		assert.Equal(t, DefaultMaxTokens, opts.MaxTokens)
		assert.Nil(t, opts.Temperature)
	})

	t.Run("integer temperature accepted", func(t *testing.T) {
		opts := ParseRequestOptions(map[string]any{"temperature": 1}, "m")
		require.NotNil(t, opts.Temperature)
		assert.Equal(t, 1.0, *opts.Temperature)
	})
}

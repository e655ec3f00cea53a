package judges

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotbench/hotbench/internal/domain"
	"github.com/hotbench/hotbench/internal/ports"
	"github.com/hotbench/hotbench/internal/testutils"
)

func TestRegistryArchetypes(t *testing.T) {
	registry := NewRegistry()
	client := testutils.NewMockLLMClient("mock-model")
	client.AddResponse("", validScoreResponse)

	tests := []struct {
		judgeType   string
		wantPersona string
	}{
		{judgeType: "academic", wantPersona: "The Academic"},
		{judgeType: "creative", wantPersona: "The Creative Writer"},
		{judgeType: "historian", wantPersona: "History Professor"},
		{judgeType: "literature", wantPersona: "English Literature Professor"},
	}

	for _, tt := range tests {
		t.Run(tt.judgeType, func(t *testing.T) {
			judge, err := registry.New(Config{
				ID:       tt.judgeType + "-1",
				Type:     tt.judgeType,
				Provider: "openai",
			}, client)
			require.NoError(t, err)
			assert.Equal(t, tt.judgeType+"-1", judge.ID())

			// The default persona reaches the scoring prompt.
			calls := client.CallCount()
			_, err = judge.Evaluate(context.Background(), domain.Essay{ID: "E", Body: "text"}, domain.DefaultRubric())
			require.NoError(t, err)
			assert.Contains(t, client.Calls[calls], tt.wantPersona)
		})
	}
}

func TestRegistryPersonaOverride(t *testing.T) {
	registry := NewRegistry()
	client := testutils.NewMockLLMClient("mock-model")
	client.AddResponse("", validScoreResponse)

	judge, err := registry.New(Config{
		ID:       "judge-1",
		Type:     "academic",
		Provider: "openai",
		Persona:  "Retired Newspaper Editor",
	}, client)
	require.NoError(t, err)

	_, err = judge.Evaluate(context.Background(), domain.Essay{ID: "E", Body: "text"}, domain.DefaultRubric())
	require.NoError(t, err)
	assert.Contains(t, client.Calls[0], "Retired Newspaper Editor")
}

func TestRegistryScoreTypeRequiresPersona(t *testing.T) {
	registry := NewRegistry()
	client := testutils.NewMockLLMClient("mock-model")

	_, err := registry.New(Config{ID: "judge-1", Type: "score", Provider: "openai"}, client)
	assert.Error(t, err)

	judge, err := registry.New(Config{
		ID: "judge-1", Type: "score", Provider: "openai", Persona: "Debate Coach",
	}, client)
	require.NoError(t, err)
	assert.Equal(t, "judge-1", judge.ID())
}

func TestRegistryUnknownType(t *testing.T) {
	registry := NewRegistry()
	client := testutils.NewMockLLMClient("mock-model")

	_, err := registry.New(Config{ID: "judge-1", Type: "oracle", Provider: "openai"}, client)
	assert.Error(t, err)
}

func TestRegistryCustomFactory(t *testing.T) {
	registry := NewRegistry()
	registry.Register("scripted", func(cfg Config, client ports.LLMClient) (ports.Judge, error) {
		return testutils.NewScriptedJudge(cfg.ID, domain.DefaultRubric()), nil
	})

	assert.Contains(t, registry.Types(), "scripted")

	judge, err := registry.New(Config{ID: "judge-1", Type: "scripted", Provider: "openai"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "judge-1", judge.ID())
}

// Package judges provides the LLM-backed implementations of the Judge and
// MetaAnalyzer ports, plus a registry of named judge constructors selected
// by configuration at startup.
package judges

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"

	"github.com/go-playground/validator/v10"

	"github.com/hotbench/hotbench/infrastructure/llm"
	"github.com/hotbench/hotbench/internal/domain"
	"github.com/hotbench/hotbench/internal/ports"
)

var _ ports.Judge = (*ScoreJudge)(nil)

// Default generation settings for scoring calls. A low temperature keeps
// scoring consistent across essays.
const (
	DefaultTemperature = 0.0
	DefaultMaxTokens   = 1024
)

// Package-level validator for parsed LLM responses.
var validate = validator.New()

// scorePromptText is the scoring prompt. The rubric and the expected JSON
// shape are rendered per call so the category set stays configuration.
const scorePromptText = `You are an essay judge with the persona of '{{.Persona}}'.
Your task is to evaluate a middle school student's essay for an essay contest.

Rubric:
{{range .Categories}}- {{.Name}}: 0-{{.MaxPoints}} points
{{end}}
Instructions:
1. Read the essay carefully.
2. Score the essay on each rubric category, within its point range.
3. Provide a detailed rationale citing specific examples from the essay.
4. Respond ONLY with a JSON object of this exact shape:
{"scores": { {{- range $i, $c := .Categories}}{{if $i}}, {{end}}"{{$c.Name}}": <0-{{$c.MaxPoints}}>{{end -}} }, "rationale": "<detailed explanation>"}

Essay to evaluate:
---
{{.Essay}}
---`

var scorePrompt = template.Must(template.New("scorePrompt").Parse(scorePromptText))

// scoreResponse is the JSON structure judges must return.
type scoreResponse struct {
	// Scores maps rubric category names to awarded points.
	Scores map[string]int `json:"scores" validate:"required,min=1"`

	// Rationale justifies the scores with examples from the essay.
	Rationale string `json:"rationale" validate:"required,min=10"`
}

// ScoreJudge scores essays through a single LLM provider call per
// evaluation. It normalizes the provider-native response at this boundary:
// output is parsed, validated against the rubric, and rejected as
// malformed_output or out_of_range rather than coerced.
// The judge is stateless and safe for concurrent use.
type ScoreJudge struct {
	id          string
	persona     string
	client      ports.LLMClient
	temperature float64
	maxTokens   int
}

// NewScoreJudge creates a judge with the given roster identifier and
// persona, backed by the provided LLM client.
func NewScoreJudge(id, persona string, client ports.LLMClient, temperature float64, maxTokens int) (*ScoreJudge, error) {
	if id == "" {
		return nil, fmt.Errorf("judge id cannot be empty")
	}
	if persona == "" {
		return nil, fmt.Errorf("judge %s: persona cannot be empty", id)
	}
	if client == nil {
		return nil, fmt.Errorf("judge %s: LLM client cannot be nil", id)
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &ScoreJudge{
		id:          id,
		persona:     persona,
		client:      client,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// ID returns the judge's roster identifier.
func (j *ScoreJudge) ID() string { return j.id }

// Evaluate scores the essay against the rubric with one outbound LLM call.
// All failure paths return a *domain.JudgeFailure with the appropriate
// reason code so the orchestrator can apply its retry policy.
func (j *ScoreJudge) Evaluate(ctx context.Context, essay domain.Essay, rubric domain.Rubric) (domain.EvaluationResult, error) {
	prompt, err := j.buildPrompt(essay, rubric)
	if err != nil {
		return domain.EvaluationResult{}, domain.NewJudgeFailure(
			essay.ID, j.id, domain.FailureProviderError, err)
	}

	options := map[string]any{
		"temperature": j.temperature,
		"max_tokens":  j.maxTokens,
		"json_mode":   true,
	}

	response, err := j.client.Complete(ctx, prompt, options)
	if err != nil {
		return domain.EvaluationResult{}, j.classifyCallError(essay.ID, err)
	}

	parsed, err := j.parseResponse(response)
	if err != nil {
		return domain.EvaluationResult{}, domain.NewJudgeFailure(
			essay.ID, j.id, domain.FailureMalformedOutput, err)
	}

	// NewEvaluationResult rejects missing categories and out-of-range
	// scores with a FailureOutOfRange JudgeFailure.
	return domain.NewEvaluationResult(essay.ID, j.id, parsed.Scores, parsed.Rationale, rubric)
}

func (j *ScoreJudge) buildPrompt(essay domain.Essay, rubric domain.Rubric) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Persona    string
		Categories domain.Rubric
		Essay      string
	}{
		Persona:    j.persona,
		Categories: rubric,
		Essay:      essay.Body,
	}
	if err := scorePrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render scoring prompt: %w", err)
	}
	return buf.String(), nil
}

func (j *ScoreJudge) parseResponse(response string) (scoreResponse, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return scoreResponse{}, fmt.Errorf("no JSON object found in response (%d chars)", len(response))
	}

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return scoreResponse{}, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	if err := validate.Struct(parsed); err != nil {
		return scoreResponse{}, fmt.Errorf("response structure invalid: %w", err)
	}

	return parsed, nil
}

// classifyCallError maps transport and provider failures onto the domain
// failure taxonomy: deadline expiry and cancellation become timeout,
// everything else provider_error.
func (j *ScoreJudge) classifyCallError(essayID string, err error) *domain.JudgeFailure {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) && provErr.IsTimeout() {
		return domain.NewJudgeFailure(essayID, j.id, domain.FailureTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewJudgeFailure(essayID, j.id, domain.FailureTimeout, err)
	}
	return domain.NewJudgeFailure(essayID, j.id, domain.FailureProviderError, err)
}

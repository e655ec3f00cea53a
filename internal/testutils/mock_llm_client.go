// Package testutils provides deterministic test doubles for the
// evaluation pipeline: a scripted LLM client and a scripted judge.
package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hotbench/hotbench/internal/ports"
)

// MockLLMClient implements ports.LLMClient with deterministic responses
// for testing prompt-driven components. Responses are selected by
// substring matching against the prompt; errors and per-call scripts can
// be injected for failure scenarios. Safe for concurrent use.
type MockLLMClient struct {
	mu sync.Mutex

	model     string
	responses []MockResponse

	// script, when non-empty, overrides pattern matching: each call
	// consumes the next entry in order.
	script []ScriptedCall

	// err, when set, is returned by every Complete call.
	err error

	// Calls records every prompt received, in order.
	Calls []string
}

// MockResponse maps a prompt substring to a canned response.
type MockResponse struct {
	Pattern  string
	Response string
}

// ScriptedCall is one step in a per-call script: either a response or an
// error.
type ScriptedCall struct {
	Response string
	Err      error
}

// NewMockLLMClient creates a mock client with no canned responses.
func NewMockLLMClient(model string) *MockLLMClient {
	return &MockLLMClient{model: model}
}

// AddResponse registers a pattern-matched response. Patterns are checked
// in registration order; an empty pattern matches any prompt.
func (m *MockLLMClient) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, MockResponse{Pattern: pattern, Response: response})
}

// SetError makes every subsequent Complete call fail with err.
func (m *MockLLMClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Script replaces pattern matching with a fixed call sequence. Calls
// beyond the script fail.
func (m *MockLLMClient) Script(calls ...ScriptedCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = calls
}

// CallCount returns how many Complete calls were received.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Complete returns the scripted or pattern-matched response for the prompt.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.Calls)
	m.Calls = append(m.Calls, prompt)

	if m.err != nil {
		return "", m.err
	}

	if len(m.script) > 0 {
		if call >= len(m.script) {
			return "", fmt.Errorf("unexpected call %d beyond scripted %d", call+1, len(m.script))
		}
		step := m.script[call]
		return step.Response, step.Err
	}

	for _, resp := range m.responses {
		if resp.Pattern == "" || strings.Contains(prompt, resp.Pattern) {
			return resp.Response, nil
		}
	}
	return "", fmt.Errorf("no mock response matches prompt")
}

// EstimateTokens approximates token counts at four characters per token.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	tokens := len(text) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens, nil
}

// GetModel returns the mock model identifier.
func (m *MockLLMClient) GetModel() string { return m.model }

// Verify interface compliance at compile time.
var _ ports.LLMClient = (*MockLLMClient)(nil)

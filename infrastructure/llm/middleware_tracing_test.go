package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingMiddleware_PassesThroughSuccessfulRequests(t *testing.T) {
	core := &fakeCore{model: "m", response: "traced"}
	wrapped := TracingMiddleware("test-service")(core)

	response, tokensIn, tokensOut, err := wrapped.DoRequest(context.Background(), "the prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "traced", response)
	assert.Equal(t, 10, tokensIn)
	assert.Equal(t, 20, tokensOut)
	assert.Equal(t, 1, core.callCount())
}

func TestTracingMiddleware_PassesThroughFailedRequests(t *testing.T) {
	coreErr := errors.New("upstream 503")
	core := &fakeCore{model: "m", err: coreErr}
	wrapped := TracingMiddleware("test-service")(core)

	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	assert.ErrorIs(t, err, coreErr, "errors should propagate unchanged after span recording")
	assert.Equal(t, 1, core.callCount())
}

func TestTracingMiddleware_PreservesPromptAndOptions(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	wrapped := TracingMiddleware("test-service")(core)

	opts := map[string]any{"temperature": 0.2, "max_tokens": 64}
	_, _, _, err := wrapped.DoRequest(context.Background(), "exact prompt", opts)
	require.NoError(t, err)

	assert.Equal(t, "exact prompt", core.lastPrompt)
	assert.Equal(t, opts, core.lastOpts)
}

func TestTracingMiddleware_HandlesContextCancellation(t *testing.T) {
	core := &fakeCore{model: "m", response: "never", delay: time.Second}
	wrapped := TracingMiddleware("test-service")(core)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := wrapped.DoRequest(ctx, "p", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTracingMiddleware_PassesThroughModelMethod(t *testing.T) {
	core := &fakeCore{model: "test-model"}
	wrapped := TracingMiddleware("test-service")(core)

	assert.Equal(t, "test-model", wrapped.GetModel())
}

package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCore is a scripted CoreLLM for middleware and client tests.
type fakeCore struct {
	mu         sync.Mutex
	model      string
	response   string
	err        error
	delay      time.Duration
	calls      int
	lastPrompt string
	lastOpts   map[string]any
}

func (f *fakeCore) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	f.mu.Lock()
	f.calls++
	f.lastPrompt = prompt
	f.lastOpts = opts
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", 0, 0, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return "", 0, 0, f.err
	}
	return f.response, 10, 20, nil
}

func (f *fakeCore) GetModel() string { return f.model }

func (f *fakeCore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewClient(t *testing.T) {
	RegisterProviderFactory("fake", func(cfg ClientConfig) (CoreLLM, error) {
		return &fakeCore{model: cfg.Model, response: "hello"}, nil
	})

	t.Run("empty api key rejected", func(t *testing.T) {
		_, err := NewClient("fake", ClientConfig{})
		assert.ErrorIs(t, err, ErrEmptyAPIKey)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		_, err := NewClient("mystery", ClientConfig{APIKey: "k"})
		assert.Error(t, err)
	})

	t.Run("complete round trip", func(t *testing.T) {
		client, err := NewClient("fake", ClientConfig{APIKey: "k", Model: "fake-model"})
		require.NoError(t, err)

		response, err := client.Complete(context.Background(), "prompt", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", response)
		assert.Equal(t, "fake-model", client.GetModel())

		response, tokensIn, tokensOut, err := client.CompleteWithUsage(context.Background(), "prompt", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", response)
		assert.Equal(t, 10, tokensIn)
		assert.Equal(t, 20, tokensOut)
	})
}

// taggingMiddleware appends its tag to the response, exposing wrap order.
func taggingMiddleware(tag string) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &taggedLLM{next: next, tag: tag}
	}
}

type taggedLLM struct {
	next CoreLLM
	tag  string
}

func (t *taggedLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	response, in, out, err := t.next.DoRequest(ctx, prompt, opts)
	return response + t.tag, in, out, err
}

func (t *taggedLLM) GetModel() string { return t.next.GetModel() }

func TestMiddlewareOrder(t *testing.T) {
	RegisterProviderFactory("fake-order", func(cfg ClientConfig) (CoreLLM, error) {
		return &fakeCore{model: cfg.Model, response: "base"}, nil
	})

	client, err := NewClient("fake-order", ClientConfig{
		APIKey: "k",
		Middleware: []Middleware{
			taggingMiddleware("-outer"),
			taggingMiddleware("-inner"),
		},
	})
	require.NoError(t, err)

	// The first configured middleware is outermost, so its tag is
	// appended last.
	response, err := client.Complete(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.Equal(t, "base-inner-outer", response)
}

func TestTokenEstimator(t *testing.T) {
	estimator := NewTokenEstimator()

	assert.Equal(t, 0, estimator.Estimate(""))
	assert.Equal(t, 2, estimator.Estimate("12345678"))
	assert.Equal(t, 10, estimator.Estimate("0123456789012345678901234567890123456789"))

	// A reported actual count wins over the estimate.
	assert.Equal(t, 7, estimator.Count(7, "whatever text"))
	assert.Equal(t, 2, estimator.Count(0, "12345678"))
}

// Package llm provides a unified client for the LLM providers backing the
// essay judges. Providers (OpenAI, Anthropic, Google) implement a minimal
// CoreLLM interface and are wrapped by middleware for timeouts, rate
// limiting, metrics, and tracing.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(10, 20),
//	        llm.TimeoutMiddleware(30 * time.Second),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/hotbench/hotbench/internal/ports"
)

// CoreLLM is the minimal contract a provider must implement. Middleware
// wraps any conforming implementation.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the response
	// text together with input and output token counts.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the currently configured model name.
	GetModel() string
}

// Middleware wraps a CoreLLM to add cross-cutting behavior such as rate
// limiting or metrics without touching provider logic.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds the settings needed to construct a provider client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model selects the provider model; empty uses the provider default.
	Model string

	// BaseURL overrides the provider's default endpoint when set.
	BaseURL string

	// Timeout bounds individual requests at the HTTP layer.
	// Zero means no per-request timeout.
	Timeout time.Duration

	// Middleware is applied outermost-first around the provider.
	Middleware []Middleware
}

// ProviderFactory creates a CoreLLM from configuration. Providers register
// themselves in init so the roster can select them by name.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a named provider implementation.
func RegisterProviderFactory(name string, factory ProviderFactory) {
	providerFactories[name] = factory
}

// Client implements ports.LLMClient by wrapping a middleware-composed
// CoreLLM with token estimation.
type Client struct {
	core      CoreLLM
	estimator *TokenEstimator
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient builds a client for the named provider, applying the
// configured middleware chain.
func NewClient(provider string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", provider, err)
	}

	// Reverse order so the first middleware is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core, estimator: NewTokenEstimator()}, nil
}

// Complete sends a prompt and returns the response text, discarding token
// usage for callers that don't track it.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends a prompt and returns the response together with
// input and output token counts.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// EstimateTokens returns an approximate token count for the given text.
func (c *Client) EstimateTokens(text string) (int, error) {
	return c.estimator.Estimate(text), nil
}

// GetModel returns the underlying provider's configured model name.
func (c *Client) GetModel() string { return c.core.GetModel() }

// TokenEstimator approximates token counts from text length when the
// provider does not report exact usage.
type TokenEstimator struct {
	// CharsPerToken is the assumed average characters per token.
	CharsPerToken float64
}

// NewTokenEstimator returns an estimator tuned for English text.
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{CharsPerToken: 4.0}
}

// Estimate returns the approximate token count for text.
func (e *TokenEstimator) Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(len(text)) / e.CharsPerToken)
}

// Count returns the provider-reported token count when positive, falling
// back to estimation otherwise.
func (e *TokenEstimator) Count(actual int, text string) int {
	if actual > 0 {
		return actual
	}
	return e.Estimate(text)
}

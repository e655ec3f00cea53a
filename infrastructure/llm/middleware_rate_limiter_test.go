package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware_AllowsBurstThenPaces(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	wrapped := RateLimitMiddleware(rate.Limit(100), 1)(core)

	start := time.Now()
	for i := 0; i < 3; i++ {
		response, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", response)
	}

	// Burst of 1 at 100 rps forces roughly 10ms waits after the first.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond,
		"requests beyond the burst should be paced by the limiter")
	assert.Equal(t, 3, core.callCount())
}

func TestRateLimitMiddleware_SharesLimiterAcrossWraps(t *testing.T) {
	mw := RateLimitMiddleware(rate.Limit(100), 1)
	coreA := &fakeCore{model: "a", response: "ok"}
	coreB := &fakeCore{model: "b", response: "ok"}
	wrappedA := mw(coreA)
	wrappedB := mw(coreB)

	start := time.Now()
	_, _, _, err := wrappedA.DoRequest(context.Background(), "p", nil)
	require.NoError(t, err)
	_, _, _, err = wrappedB.DoRequest(context.Background(), "p", nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond,
		"both wrapped clients should draw from one token bucket")
}

func TestRateLimitMiddleware_FailsOnContextCancellation(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	wrapped := RateLimitMiddleware(rate.Limit(0.001), 1)(core)

	// Consume the only burst token.
	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, _, err = wrapped.DoRequest(ctx, "p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit", "limiter wait failures should be labeled")
	assert.Equal(t, 1, core.callCount(), "a canceled wait should never reach the provider")
}

func TestRateLimitMiddleware_PassesThroughModelMethod(t *testing.T) {
	core := &fakeCore{model: "test-model"}
	wrapped := RateLimitMiddleware(rate.Limit(1), 1)(core)

	assert.Equal(t, "test-model", wrapped.GetModel())
}

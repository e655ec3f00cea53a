package ports

import (
	"context"
	"time"
)

// LLMClient defines the interface for interacting with Large Language
// Model providers. Implementations handle provider-specific details like
// authentication, request formatting, and response parsing.
type LLMClient interface {
	// Complete sends a completion request to the LLM provider and returns
	// the generated text. The options map allows provider-specific
	// settings without changing the interface; common options include
	// "temperature" (float64), "max_tokens" (int), "system" (string),
	// and "response_format".
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens calculates the approximate token count for a text.
	// Used for cost estimation and prompt budget checks.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier used by this client.
	GetModel() string
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations integrate with observability platforms such as
// Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

package llm

import (
	"context"
	"errors"
	"time"

	"github.com/hotbench/hotbench/internal/ports"
)

// metricsLLM records request latency, outcomes, and token usage for every
// provider call.
type metricsLLM struct {
	next      CoreLLM
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that reports LLM request metrics to
// the given collector.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &metricsLLM{next: next, collector: collector}
	}
}

// DoRequest executes the request while recording latency, status, and
// token counters.
func (m *metricsLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	start := time.Now()
	response, tokensIn, tokensOut, err := m.next.DoRequest(ctx, prompt, opts)

	labels := map[string]string{
		"model":  m.next.GetModel(),
		"status": "success",
	}
	if err != nil {
		labels["status"] = "error"
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			if s := provErr.typeString(); s != "" {
				labels["status"] = s
			}
		}
	}

	if m.collector != nil {
		m.collector.RecordHistogram("llm_request_duration_seconds", time.Since(start).Seconds(), labels)
		m.collector.RecordCounter("llm_requests_total", 1, labels)

		if err == nil {
			labels["token_type"] = "input"
			m.collector.RecordCounter("llm_tokens_total", float64(tokensIn), labels)

			labels["token_type"] = "output"
			m.collector.RecordCounter("llm_tokens_total", float64(tokensOut), labels)
		}
	}

	return response, tokensIn, tokensOut, err
}

// GetModel returns the model name from the wrapped implementation.
func (m *metricsLLM) GetModel() string { return m.next.GetModel() }

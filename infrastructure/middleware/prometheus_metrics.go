// Package middleware provides cross-cutting infrastructure for the
// evaluation engine, currently the Prometheus-backed metrics collector.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hotbench/hotbench/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector port using Prometheus.
// It tracks evaluation throughput, per-pair outcomes, LLM latency, and
// token consumption for the judging pipeline.
type PrometheusMetrics struct {
	requestLatency   *prometheus.HistogramVec
	operationLatency *prometheus.HistogramVec
	counters         *prometheus.CounterVec
	gauges           *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its collectors in the default registry. Call at most once per process.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		requestLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hotbench_request_duration_seconds",
				Help:    "Latency of outbound LLM requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric", "model", "status"},
		),
		operationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hotbench_operation_duration_seconds",
				Help:    "Execution time of engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		counters: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotbench_events_total",
				Help: "Counts of engine events such as evaluations, retries, and failures.",
			},
			[]string{"metric", "model", "status", "token_type", "judge", "reason"},
		),
		gauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hotbench_state",
				Help: "Current engine state values such as in-flight evaluations.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records the execution time of an engine operation.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter increments a counter metric with the given labels.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	pm.counters.WithLabelValues(
		metric,
		labels["model"],
		labels["status"],
		labels["token_type"],
		labels["judge"],
		labels["reason"],
	).Add(value)
}

// RecordGauge sets the current value of a gauge metric.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	pm.gauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram records a value in a histogram metric.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	pm.requestLatency.WithLabelValues(metric, labels["model"], labels["status"]).Observe(value)
}

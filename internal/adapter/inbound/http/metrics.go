// Package http provides the thin REST facade for submitting guardrail checks
// and tool-call intercept decisions.
package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the control plane. Pass to
// components that need to record metrics; fields are safe for concurrent use.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	GuardrailChecks     *prometheus.CounterVec
	GuardrailLatency    *prometheus.HistogramVec
	InterceptDecisions  *prometheus.CounterVec
	SandboxRuns         *prometheus.CounterVec
	AuditDropsTotal     prometheus.Counter
	RateLimitKeys       prometheus.Gauge
	ResultCacheHitRatio prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "guardstack",
				Name:      "requests_total",
				Help:      "Total number of control-plane requests processed",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "guardstack",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		GuardrailChecks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "guardstack",
				Name:      "guardrail_checks_total",
				Help:      "Total guardrail checkpoint evaluations",
			},
			[]string{"checkpoint", "phase", "action"},
		),
		GuardrailLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "guardstack",
				Name:      "guardrail_latency_seconds",
				Help:      "Guardrail checkpoint evaluation latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"checkpoint", "phase"},
		),
		InterceptDecisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "guardstack",
				Name:      "intercept_decisions_total",
				Help:      "Total tool-call intercept decisions",
			},
			[]string{"action"},
		),
		SandboxRuns: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "guardstack",
				Name:      "sandbox_runs_total",
				Help:      "Total sandboxed tool executions",
			},
			[]string{"mode", "result"},
		),
		AuditDropsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "guardstack",
				Name:      "audit_drops_total",
				Help:      "Total audit records dropped due to backpressure",
			},
		),
		RateLimitKeys: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "guardstack",
				Name:      "rate_limit_keys",
				Help:      "Number of active rate limit keys",
			},
		),
		ResultCacheHitRatio: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "guardstack",
				Name:      "guardrail_result_cache_hit_ratio",
				Help:      "Rolling hit ratio of the guardrail result cache",
			},
		),
	}
}

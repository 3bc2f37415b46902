package llm

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for LLM request observability.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

// NewMetrics creates and registers the LLM metrics collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ragjudge_llm_requests_total",
			Help: "LLM completion requests by model and outcome.",
		}, []string{"model", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ragjudge_llm_request_duration_seconds",
			Help:    "LLM completion request latency.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"model"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ragjudge_llm_tokens_total",
			Help: "Tokens consumed by direction.",
		}, []string{"model", "direction"}),
	}
	reg.MustRegister(m.requests, m.latency, m.tokens)
	return m
}

// metricsLLM records request counts, latency, and token usage.
type metricsLLM struct {
	next    CoreLLM
	metrics *Metrics
}

// MetricsMiddleware creates middleware recording Prometheus metrics for
// every completion request.
func MetricsMiddleware(m *Metrics) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &metricsLLM{next: next, metrics: m}
	}
}

// Complete forwards the request and records its outcome.
func (m *metricsLLM) Complete(ctx context.Context, req Request) (Response, error) {
	model := m.next.Model()
	start := time.Now()

	resp, err := m.next.Complete(ctx, req)

	m.metrics.latency.WithLabelValues(model).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.metrics.requests.WithLabelValues(model, status).Inc()
	if err == nil {
		m.metrics.tokens.WithLabelValues(model, "in").Add(float64(resp.TokensIn))
		m.metrics.tokens.WithLabelValues(model, "out").Add(float64(resp.TokensOut))
	}

	return resp, err
}

// Model returns the model name from the wrapped implementation.
func (m *metricsLLM) Model() string { return m.next.Model() }

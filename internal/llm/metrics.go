package llm

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records LLM call outcomes, latency and token usage.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

// NewMetrics creates a metrics set on its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fileagent_llm_requests_total",
			Help: "Chat completion requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fileagent_llm_request_duration_seconds",
			Help:    "Chat completion latency including retries.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fileagent_llm_tokens_total",
			Help: "Tokens consumed by kind (prompt, completion).",
		}, []string{"provider", "kind"}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.tokens)
	return m
}

// Observe records one finished call.
func (m *Metrics) Observe(provider string, elapsed time.Duration, usage Usage, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	switch {
	case err == nil:
	case IsTransient(err):
		outcome = "transient_error"
	default:
		outcome = "error"
	}
	m.requests.WithLabelValues(provider, outcome).Inc()
	m.latency.WithLabelValues(provider).Observe(elapsed.Seconds())
	if usage.PromptTokens > 0 {
		m.tokens.WithLabelValues(provider, "prompt").Add(float64(usage.PromptTokens))
	}
	if usage.CompletionTokens > 0 {
		m.tokens.WithLabelValues(provider, "completion").Add(float64(usage.CompletionTokens))
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the metrics in the Prometheus text format, suitable for
// the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// DefaultMetrics is shared by clients that are not given their own set.
var DefaultMetrics = NewMetrics()

// WriteMetrics dumps DefaultMetrics to path.
func WriteMetrics(path string) error {
	return DefaultMetrics.WriteTextfile(path)
}

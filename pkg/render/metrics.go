package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Render outcome labels.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// MetricsConfig configures the render metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "openrsc").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64
}

// MetricsOption configures render metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// Metrics holds the Prometheus collectors for server renders.
type Metrics struct {
	rendersTotal    *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	boundariesTotal prometheus.Counter
}

// NewMetrics registers the render collectors with reg.
//
// Metrics collected:
//   - openrsc_renders_total: Counter of renders by status (ok, not_found, error)
//   - openrsc_render_duration_seconds: Histogram of render duration
//   - openrsc_client_boundaries_total: Counter of hydration markers emitted
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "openrsc",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(reg)

	return &Metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "renders_total",
			Help:        "Total number of server renders by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "render_duration_seconds",
			Help:        "Server render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		boundariesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "client_boundaries_total",
			Help:        "Total number of client component markers emitted",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) observe(status string, seconds float64, boundaries int) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(status).Inc()
	m.renderDuration.Observe(seconds)
	if boundaries > 0 {
		m.boundariesTotal.Add(float64(boundaries))
	}
}

package middleware

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trellis-web/trellis/pkg/server"
)

// MetricsConfig configures the Prometheus recorder.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "trellis").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus recorder.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "trellis",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for one recorder instance.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	hijacksTotal    prometheus.Counter
}

func newMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of dispatched requests",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method", "route"}),

		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_errors_total",
			Help:        "Total number of handler chain failures",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "route"}),

		hijacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hijacked_connections_total",
			Help:        "Total number of connections taken over by a handler",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// record feeds one dispatch outcome into the metrics. The route label is
// the matched route's canonical pattern, never the raw request path, so
// label cardinality stays bounded by the route table.
func (m *metrics) record(rec server.Record) {
	route := rec.Route
	if route == "" {
		route = "unmatched"
	}

	if rec.Hijacked {
		m.hijacksTotal.Inc()
		return
	}

	m.requestsTotal.WithLabelValues(rec.Method, route, strconv.Itoa(rec.Status)).Inc()
	m.requestDuration.WithLabelValues(rec.Method, route).Observe(rec.Duration.Seconds())
	if rec.Err != nil {
		m.requestErrors.WithLabelValues(rec.Method, route).Inc()
	}
}

// Prometheus creates a recorder that collects Prometheus metrics for every
// dispatch.
//
// Metrics collected:
//   - trellis_requests_total: Counter of requests by method, route, status
//   - trellis_request_duration_seconds: Histogram of dispatch duration
//   - trellis_request_errors_total: Counter of chain failures by method and route
//   - trellis_hijacked_connections_total: Counter of hijacked connections
//
// The metrics register with the configured registry on construction, so
// build the recorder once per registry; a second registration with the
// same registry panics, per Prometheus convention.
//
// Example:
//
//	config.Recorders = append(config.Recorders,
//	    middleware.Prometheus(middleware.WithNamespace("myapp")),
//	)
func Prometheus(opts ...MetricsOption) server.Recorder {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	m := newMetrics(config)
	return m.record
}

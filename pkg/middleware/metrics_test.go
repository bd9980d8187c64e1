package middleware

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/trellis-web/trellis/pkg/server"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func testMetrics() *metrics {
	config := defaultMetricsConfig()
	config.Registry = prometheus.NewRegistry()
	return newMetrics(config)
}

func TestMetricsRecordSuccess(t *testing.T) {
	m := testMetrics()

	m.record(server.Record{
		Method:   http.MethodGet,
		Path:     "/widgets/7",
		Route:    "/widgets/:id",
		Status:   http.StatusOK,
		Duration: 12 * time.Millisecond,
	})

	if got := counterValue(t, m.requestsTotal.WithLabelValues("GET", "/widgets/:id", "200")); got != 1 {
		t.Fatalf("requests_total = %v, want 1", got)
	}
	if got := histogramCount(t, m.requestDuration.WithLabelValues("GET", "/widgets/:id")); got != 1 {
		t.Fatalf("duration samples = %v, want 1", got)
	}
	if got := counterValue(t, m.requestErrors.WithLabelValues("GET", "/widgets/:id")); got != 0 {
		t.Fatalf("errors = %v, want 0", got)
	}
}

func TestMetricsRecordError(t *testing.T) {
	m := testMetrics()

	m.record(server.Record{
		Method: http.MethodPost,
		Route:  "/widgets",
		Status: http.StatusInternalServerError,
		Err:    errors.New("db down"),
	})

	if got := counterValue(t, m.requestErrors.WithLabelValues("POST", "/widgets")); got != 1 {
		t.Fatalf("errors = %v, want 1", got)
	}
	if got := counterValue(t, m.requestsTotal.WithLabelValues("POST", "/widgets", "500")); got != 1 {
		t.Fatalf("requests_total = %v, want 1", got)
	}
}

func TestMetricsRecordUnmatched(t *testing.T) {
	m := testMetrics()

	m.record(server.Record{
		Method: http.MethodGet,
		Path:   "/definitely/not/registered",
		Status: http.StatusNotFound,
	})

	// The raw path must not leak into labels.
	if got := counterValue(t, m.requestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Fatalf("requests_total = %v, want 1", got)
	}
}

func TestMetricsRecordHijack(t *testing.T) {
	m := testMetrics()

	m.record(server.Record{
		Method:   http.MethodGet,
		Route:    "/ws",
		Hijacked: true,
	})

	if got := counterValue(t, m.hijacksTotal); got != 1 {
		t.Fatalf("hijacks = %v, want 1", got)
	}
	if got := counterValue(t, m.requestsTotal.WithLabelValues("GET", "/ws", "0")); got != 0 {
		t.Fatalf("hijacked dispatch counted as a plain request")
	}
}

func TestPrometheusRecorderOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := Prometheus(
		WithRegistry(reg),
		WithNamespace("myapp"),
		WithSubsystem("edge"),
		WithConstLabels(prometheus.Labels{"zone": "a"}),
		WithBuckets([]float64{0.1, 1}),
	)

	recorder(server.Record{Method: http.MethodGet, Route: "/", Status: http.StatusOK})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	found := false
	for _, family := range families {
		if family.GetName() == "myapp_edge_requests_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("configured namespace and subsystem not applied")
	}
}

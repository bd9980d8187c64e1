package middleware

import (
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/trellis-web/trellis/pkg/server"
)

func TestOpenTelemetryRecorderRuns(t *testing.T) {
	// Without an SDK provider the global tracer is a no-op; the recorder
	// must still walk its full path without panicking.
	recorder := OpenTelemetry(
		WithTracerName("test"),
		WithIncludeSourceAddr(true),
		WithAttributeExtractor(func(rec server.Record) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("deploy.zone", "a")}
		}),
	)

	recorder(server.Record{
		Method:     http.MethodGet,
		Path:       "/widgets/7",
		Route:      "/widgets/:id",
		Status:     http.StatusOK,
		SourceAddr: "203.0.113.9",
		Start:      time.Now().Add(-5 * time.Millisecond),
		Duration:   5 * time.Millisecond,
	})
}

func TestOpenTelemetryRecorderFilter(t *testing.T) {
	filtered := 0
	recorder := OpenTelemetry(WithFilter(func(rec server.Record) bool {
		filtered++
		return rec.Path != "/healthz"
	}))

	recorder(server.Record{Method: http.MethodGet, Path: "/healthz", Status: http.StatusOK})
	recorder(server.Record{Method: http.MethodGet, Path: "/work", Status: http.StatusOK})

	if filtered != 2 {
		t.Fatalf("filter calls = %d, want 2", filtered)
	}
}

func TestSpanName(t *testing.T) {
	if got := spanName(server.Record{Method: "GET", Route: "/widgets/:id"}); got != "GET /widgets/:id" {
		t.Fatalf("spanName = %q", got)
	}
	if got := spanName(server.Record{Method: "POST"}); got != "POST" {
		t.Fatalf("spanName = %q, want bare method for unmatched", got)
	}
}

package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trellis-web/trellis/pkg/server"
)

// Default tracer name for trellis applications.
const defaultTracerName = "trellis"

// OTelConfig configures the OpenTelemetry recorder.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "trellis").
	TracerName string

	// IncludeSourceAddr includes the resolved client address in spans.
	// May be personal data under some policies - disabled by default.
	IncludeSourceAddr bool

	// Filter determines which dispatches to trace.
	// Return true to trace, false to skip. If nil, everything is traced.
	Filter func(rec server.Record) bool

	// AttributeExtractor extracts custom attributes from the record.
	// Called for each traced dispatch.
	AttributeExtractor func(rec server.Record) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry recorder.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeSourceAddr enables including the client address in spans.
func WithIncludeSourceAddr(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeSourceAddr = include
	}
}

// WithFilter sets a filter function for dispatches.
func WithFilter(filter func(rec server.Record) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(rec server.Record) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates a recorder that emits one span per dispatch.
//
// Because recorders run after the response is written, the span covers the
// completed dispatch: it is started and ended with the record's explicit
// timestamps rather than the wall clock. Spans carry the request method,
// the matched route pattern, the response status, and the chain error when
// there was one.
//
// The tracer comes from the global OpenTelemetry tracer provider.
// Configure the provider in main() before starting the server:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) server.Recorder {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	config.tracer = otel.Tracer(config.TracerName)

	return func(rec server.Record) {
		if config.Filter != nil && !config.Filter(rec) {
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", rec.Method),
			attribute.Bool("trellis.hijacked", rec.Hijacked),
		}
		if rec.Route != "" {
			attrs = append(attrs, attribute.String("http.route", rec.Route))
		}
		if rec.Status != 0 {
			attrs = append(attrs, attribute.Int("http.response.status_code", rec.Status))
		}
		if config.IncludeSourceAddr && rec.SourceAddr != "" {
			attrs = append(attrs, attribute.String("client.address", rec.SourceAddr))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(rec)...)
		}

		_, span := config.tracer.Start(
			context.Background(),
			spanName(rec),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(rec.Start),
		)

		if rec.Err != nil {
			span.RecordError(rec.Err)
			span.SetStatus(codes.Error, rec.Err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		span.End(trace.WithTimestamp(rec.Start.Add(rec.Duration)))
	}
}

// spanName follows the HTTP semantic convention: method plus route when a
// route matched, bare method otherwise.
func spanName(rec server.Record) string {
	if rec.Route == "" {
		return rec.Method
	}
	return fmt.Sprintf("%s %s", rec.Method, rec.Route)
}

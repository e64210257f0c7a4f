// Package tracing provides OpenTelemetry integration for the ingest API:
// a tracer provider setup for main and HTTP middleware that opens a server
// span per request and propagates W3C Trace Context.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "logbridge"

var tracer = otel.Tracer(serviceName)

// GetTracer returns the global tracer for creating spans.
func GetTracer() trace.Tracer {
	return tracer
}

// Init installs a tracer provider and the W3C propagator, and returns a
// shutdown function to flush pending spans. Without an exporter configured
// the provider records spans locally; middleware still stamps trace IDs on
// responses and log records.
func Init(opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}

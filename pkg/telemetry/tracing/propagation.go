package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// Trace context travels in the W3C traceparent and tracestate headers:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// A remote span context extracted from a request survives a noop tracer, so
// trace IDs reach the logs even when export is disabled.

var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Propagator returns the W3C Trace Context and Baggage propagator. It does
// not depend on the otel globals.
func Propagator() propagation.TextMapPropagator {
	return propagator
}

// Extract returns ctx carrying the trace context found in headers. If there
// is none, ctx is returned unchanged.
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "POST /v1/sessions/{id}/finalize")
//	defer span.End()
func Extract(ctx context.Context, headers http.Header) context.Context {
	return propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into headers.
func Inject(ctx context.Context, headers http.Header) {
	propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

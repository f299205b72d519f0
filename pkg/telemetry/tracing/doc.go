// Package tracing provides OpenTelemetry tracing for the governor's hook API.
//
// Spans are exported over OTLP gRPC. When tracing is disabled New returns a
// Tracer backed by the noop provider, so callers never branch on Enabled:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(tracing.Extract(r.Context(), r.Header), route)
//	defer span.End()
//	tracing.SetFinalizeAttributes(span, text, out)
//
// Sampling is parent-based: "always", "never" or "ratio" applies only to
// root spans, and an inbound traceparent decides for its children.
package tracing

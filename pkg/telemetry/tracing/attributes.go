package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Governance keys use the "governor." namespace; HTTP keys
// follow OpenTelemetry semantic conventions.
const (
	AttrSessionID = "governor.session_id"
	AttrRequestID = "governor.request_id"

	AttrModified    = "governor.output.modified"
	AttrInputBytes  = "governor.input.bytes"
	AttrOutputBytes = "governor.output.bytes"
	AttrRuleID      = "governor.rule_id"
	AttrCommand     = "governor.command"
	AttrWarning     = "governor.streaming.warning"
	AttrReplySize   = "governor.reply.bytes"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
)

// SetSessionAttributes tags a span with the session and request it serves.
func SetSessionAttributes(span trace.Span, sessionID, requestID string) {
	attrs := make([]attribute.KeyValue, 0, 2)
	if sessionID != "" {
		attrs = append(attrs, attribute.String(AttrSessionID, sessionID))
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetFinalizeAttributes records the sizes of a finalized response and
// whether the hooks replaced or extended it.
func SetFinalizeAttributes(span trace.Span, input, output string) {
	span.SetAttributes(
		attribute.Int(AttrInputBytes, len(input)),
		attribute.Int(AttrOutputBytes, len(output)),
		attribute.Bool(AttrModified, input != output),
	)
}

// SetCommandAttributes records a governance command dispatch.
func SetCommandAttributes(span trace.Span, command string, replySize int) {
	span.SetAttributes(
		attribute.String(AttrCommand, command),
		attribute.Int(AttrReplySize, replySize),
	)
}

// SetHTTPAttributes records the route-level request attributes.
func SetHTTPAttributes(span trace.Span, method, route string, status int) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.Int(AttrHTTPStatus, status),
	)
}

// AddEvent adds a named event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

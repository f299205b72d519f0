// Package logging configures log/slog for the governor.
//
// New returns a *slog.Logger whose handler adds request, session and trace
// IDs from the context and redacts PII from attribute values. Finalized
// model output and command parameters can reach log attributes, so
// redaction is on by default.
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "response blocked", "rule_id", 28)
package logging

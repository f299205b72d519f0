// Package telemetry wires the governor's observability stack.
//
// The subpackages are:
//
//   - logging: slog setup with PII redaction and context attributes
//   - metrics: Prometheus collector implementing engine.Observer
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness and readiness probes
//
// New builds all four from config.TelemetryConfig:
//
//	tel, err := telemetry.New(&cfg.Telemetry, version)
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(context.Background())
package telemetry

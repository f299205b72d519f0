package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"mercator-hq/governor/pkg/config"
	"mercator-hq/governor/pkg/telemetry/health"
	"mercator-hq/governor/pkg/telemetry/logging"
	"mercator-hq/governor/pkg/telemetry/metrics"
	"mercator-hq/governor/pkg/telemetry/tracing"
)

// Telemetry bundles the logger, metrics collector, tracer and health checker.
type Telemetry struct {
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	health  *health.Checker
}

// New builds the telemetry stack and installs the logger as the slog
// default. Log output goes to w, or stderr when w is nil.
func New(cfg *config.TelemetryConfig, version string, w io.Writer) (*Telemetry, error) {
	logger, err := logging.Setup(cfg.Logging, w)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	collector := metrics.NewCollector(&cfg.Metrics, nil)
	if cfg.Metrics.Enabled {
		collector.RegisterRuntimeCollectors()
	}

	tracer, err := tracing.New(&cfg.Tracing, tracing.WithServiceVersion(version))
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	return &Telemetry{
		logger:  logger,
		metrics: collector,
		tracer:  tracer,
		health:  health.New(cfg.Health.CheckTimeout),
	}, nil
}

// Logger returns the configured logger.
func (t *Telemetry) Logger() *slog.Logger { return t.logger }

// Metrics returns the Prometheus collector.
func (t *Telemetry) Metrics() *metrics.Collector { return t.metrics }

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer { return t.tracer }

// Health returns the health checker.
func (t *Telemetry) Health() *health.Checker { return t.health }

// Shutdown flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.tracer.Shutdown(ctx)
}

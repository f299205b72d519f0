package config

import (
	"time"

	"mercator-hq/governor/pkg/governance/engine"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = int64(4 << 20)

	// Persistence defaults
	DefaultPersistenceEnabled = true
	DefaultStateDir           = "data/state"
	DefaultResume             = true

	// Event log defaults
	DefaultEventLogBackend        = "sqlite"
	DefaultEventLogPath           = "data/governance.db"
	DefaultEventLogSQLiteDriver   = "sqlite"
	DefaultEventLogBusyTimeout    = 5 * time.Second
	DefaultEventLogMemoryCapacity = 4096
	DefaultRetentionDays          = 90
	DefaultRetentionSchedule      = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultRedactPII          = true
	DefaultMetricsEnabled     = true
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "governor"
	DefaultMetricsSubsystem   = "hooks"
	DefaultMaxCommandLabels   = 32
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingService     = "governor"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultDriftBuckets are the drift histogram buckets.
var DefaultDriftBuckets = []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.75, 1.0}

// DefaultConfig returns a fully populated configuration. Boolean options
// that default to true are only set here, so files loaded on top of it can
// still switch them off.
func DefaultConfig() *Config {
	cfg := &Config{
		Persistence: PersistenceConfig{
			Enabled: DefaultPersistenceEnabled,
			Resume:  DefaultResume,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactPII: DefaultRedactPII},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{
				Enabled: DefaultTracingEnabled,
				OTLP:    OTLPConfig{Insecure: DefaultOTLPInsecure},
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	applyGovernanceDefaults(&cfg.Governance)

	// Persistence defaults
	if cfg.Persistence.StateDir == "" {
		cfg.Persistence.StateDir = DefaultStateDir
	}

	// Event log defaults
	if cfg.EventLog.Backend == "" {
		cfg.EventLog.Backend = DefaultEventLogBackend
	}
	if cfg.EventLog.Path == "" {
		cfg.EventLog.Path = DefaultEventLogPath
	}
	if cfg.EventLog.SQLite.Driver == "" {
		cfg.EventLog.SQLite.Driver = DefaultEventLogSQLiteDriver
	}
	if cfg.EventLog.SQLite.BusyTimeout == 0 {
		cfg.EventLog.SQLite.BusyTimeout = DefaultEventLogBusyTimeout
	}
	if cfg.EventLog.MemoryCapacity == 0 {
		cfg.EventLog.MemoryCapacity = DefaultEventLogMemoryCapacity
	}
	if cfg.EventLog.Retention.Days == 0 {
		cfg.EventLog.Retention.Days = DefaultRetentionDays
	}
	if cfg.EventLog.Retention.PruneSchedule == "" {
		cfg.EventLog.Retention.PruneSchedule = DefaultRetentionSchedule
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}

	// Metrics defaults
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DriftBuckets) == 0 {
		cfg.Telemetry.Metrics.DriftBuckets = append([]float64(nil), DefaultDriftBuckets...)
	}
	if cfg.Telemetry.Metrics.MaxCommandLabels == 0 {
		cfg.Telemetry.Metrics.MaxCommandLabels = DefaultMaxCommandLabels
	}

	// Tracing defaults
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	// Health defaults
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

// applyGovernanceDefaults fills zero tunables from engine.DefaultParams.
func applyGovernanceDefaults(g *GovernanceConfig) {
	d := engine.DefaultParams()
	setFloat := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	setInt := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}

	setFloat(&g.DriftThreshold, d.DriftThreshold)
	setFloat(&g.ViolationPenalty, d.ViolationPenalty)
	setFloat(&g.ReaffirmationRelief, d.ReaffirmationRelief)
	setFloat(&g.InvocationRelief, d.InvocationRelief)
	setFloat(&g.ReinforcementRelief, d.ReinforcementRelief)
	setInt(&g.ConsecutiveViolationLimit, d.ConsecutiveViolationLimit)
	setInt(&g.HistorySize, d.HistorySize)
	setInt(&g.StreamingMinLength, d.StreamingMinLength)
	setInt(&g.IntegrityCheckInterval, d.IntegrityCheckInterval)
	setInt(&g.PersistInterval, d.PersistInterval)
	setInt(&g.MinRuleCount, d.MinRuleCount)
	setInt(&g.MinMemoryComponents, d.MinMemoryComponents)
	setFloat(&g.SimilarityThreshold, d.SimilarityThreshold)
	setInt(&g.RepetitionMinLength, d.RepetitionMinLength)
	setInt(&g.RepetitionPrefixLength, d.RepetitionPrefixLength)
	setInt(&g.MemoryLogLimit, d.MemoryLogLimit)
	setInt(&g.TokenLimit, d.TokenLimit)
}

// Params converts the governance section into engine tunables.
func (g GovernanceConfig) Params() engine.Params {
	return engine.Params{
		DriftThreshold:            g.DriftThreshold,
		ViolationPenalty:          g.ViolationPenalty,
		ReaffirmationRelief:       g.ReaffirmationRelief,
		InvocationRelief:          g.InvocationRelief,
		ReinforcementRelief:       g.ReinforcementRelief,
		ConsecutiveViolationLimit: g.ConsecutiveViolationLimit,
		HistorySize:               g.HistorySize,
		StreamingMinLength:        g.StreamingMinLength,
		IntegrityCheckInterval:    g.IntegrityCheckInterval,
		PersistInterval:           g.PersistInterval,
		MinRuleCount:              g.MinRuleCount,
		MinMemoryComponents:       g.MinMemoryComponents,
		SimilarityThreshold:       g.SimilarityThreshold,
		RepetitionMinLength:       g.RepetitionMinLength,
		RepetitionPrefixLength:    g.RepetitionPrefixLength,
		MemoryLogLimit:            g.MemoryLogLimit,
		TokenLimit:                g.TokenLimit,
	}
}

package config

import "time"

// Config is the root configuration structure for the governor.
// It contains the HTTP server, governance tunables, state persistence,
// event log, and telemetry sections.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and request limits.
	Server ServerConfig `yaml:"server"`

	// Governance contains the drift, repetition and integrity tunables
	// applied to every new session.
	Governance GovernanceConfig `yaml:"governance"`

	// Persistence controls where per-session governance state is stored.
	Persistence PersistenceConfig `yaml:"persistence"`

	// EventLog contains configuration for the governance event log
	// including backend selection and retention.
	EventLog EventLogConfig `yaml:"event_log"`

	// Telemetry contains configuration for observability including logging,
	// metrics, distributed tracing, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits request body size for hook operations.
	// Default: 4194304 (4MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// GovernanceConfig contains the governance engine tunables.
type GovernanceConfig struct {
	// DriftThreshold is the drift score above which reinforcement runs.
	// Default: 0.4
	DriftThreshold float64 `yaml:"drift_threshold"`

	// ViolationPenalty is added to drift per logged violation.
	// Default: 0.1
	ViolationPenalty float64 `yaml:"violation_penalty"`

	// ReaffirmationRelief is subtracted from drift when purpose is reaffirmed.
	// Default: 0.05
	ReaffirmationRelief float64 `yaml:"reaffirmation_relief"`

	// InvocationRelief is subtracted from drift per rule invocation.
	// Default: 0.02
	InvocationRelief float64 `yaml:"invocation_relief"`

	// ReinforcementRelief is subtracted from drift per reinforcement pass.
	// Default: 0.3
	ReinforcementRelief float64 `yaml:"reinforcement_relief"`

	// ConsecutiveViolationLimit triggers reinforcement once reached.
	// Default: 3
	ConsecutiveViolationLimit int `yaml:"consecutive_violation_limit"`

	// HistorySize bounds the finalized response history per session.
	// Default: 5
	HistorySize int `yaml:"history_size"`

	// StreamingMinLength is the partial output length below which streaming
	// checks are skipped.
	// Default: 50
	StreamingMinLength int `yaml:"streaming_min_length"`

	// IntegrityCheckInterval is the cycle period for integrity checks.
	// Default: 5
	IntegrityCheckInterval int `yaml:"integrity_check_interval"`

	// PersistInterval is the cycle period for state snapshots.
	// Default: 10
	PersistInterval int `yaml:"persist_interval"`

	// MinRuleCount is the registry size below which integrity fails.
	// Default: 20
	MinRuleCount int `yaml:"min_rule_count"`

	// MinMemoryComponents is the memory kernel size below which integrity
	// fails.
	// Default: 5
	MinMemoryComponents int `yaml:"min_memory_components"`

	// SimilarityThreshold is the Levenshtein similarity at or above which a
	// response is treated as a repeat.
	// Default: 0.90
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// RepetitionMinLength is the minimum response length for fuzzy and
	// self-duplication checks.
	// Default: 20
	RepetitionMinLength int `yaml:"repetition_min_length"`

	// RepetitionPrefixLength is the prefix length used for self-duplication.
	// Default: 50
	RepetitionPrefixLength int `yaml:"repetition_prefix_length"`

	// MemoryLogLimit bounds the per-session memory kernel log.
	// Default: 256
	MemoryLogLimit int `yaml:"memory_log_limit"`

	// TokenLimit is the memory kernel token budget.
	// Default: 32768
	TokenLimit int `yaml:"token_limit"`

	// PatternsFile optionally replaces the built-in adversarial pattern set
	// with a YAML file of the same shape.
	// Default: "" (built-in patterns)
	PatternsFile string `yaml:"patterns_file"`
}

// PersistenceConfig controls per-session state snapshots.
type PersistenceConfig struct {
	// Enabled controls whether sessions snapshot their state to disk.
	// When disabled, sessions keep state in memory only.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// StateDir is the directory holding one snapshot file per session.
	// Default: "data/state"
	StateDir string `yaml:"state_dir"`

	// Resume loads an existing snapshot when a session is created.
	// Default: true
	Resume bool `yaml:"resume"`
}

// EventLogConfig contains configuration for the governance event log.
type EventLogConfig struct {
	// Backend selects the event sink.
	// Options: "sqlite", "file", "memory", "none"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the database or JSON lines file path.
	// Default: "data/governance.db"
	Path string `yaml:"path"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// MemoryCapacity bounds the in-memory backend.
	// Default: 4096
	MemoryCapacity int `yaml:"memory_capacity"`

	// Retention contains event retention configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite event store configuration.
type SQLiteConfig struct {
	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains event retention configuration.
type RetentionConfig struct {
	// Days is the number of days to keep events. 0 keeps events forever.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a standard cron expression for the prune job.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables PII redaction of log attributes. Model output
	// reaches the logs through warnings and command parameters.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom PII redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom PII redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "governor"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "hooks"
	Subsystem string `yaml:"subsystem"`

	// DriftBuckets defines histogram buckets for drift scores.
	// Default: [0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.75, 1.0]
	DriftBuckets []float64 `yaml:"drift_buckets"`

	// MaxCommandLabels caps distinct command label values; unknown commands
	// beyond the cap are reported as "other".
	// Default: 32
	MaxCommandLabels int `yaml:"max_command_labels"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "governor"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

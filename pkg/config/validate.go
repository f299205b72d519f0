package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateGovernance(&cfg.Governance)...)
	errs = append(errs, validatePersistence(&cfg.Persistence)...)
	errs = append(errs, validateEventLog(&cfg.EventLog)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	for field, d := range map[string]time.Duration{
		"server.read_timeout":     cfg.ReadTimeout,
		"server.write_timeout":    cfg.WriteTimeout,
		"server.idle_timeout":     cfg.IdleTimeout,
		"server.shutdown_timeout": cfg.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, FieldError{Field: field, Message: "timeout must be positive"})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}

	return errs
}

// validateGovernance validates the engine tunables.
func validateGovernance(cfg *GovernanceConfig) []FieldError {
	var errs []FieldError
	unit := func(field string, v float64, allowZero bool) {
		if v < 0 || v > 1 || (!allowZero && v == 0) {
			bound := "(0, 1]"
			if allowZero {
				bound = "[0, 1]"
			}
			errs = append(errs, FieldError{
				Field:   "governance." + field,
				Message: fmt.Sprintf("must be in %s, got %g", bound, v),
			})
		}
	}
	positive := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, FieldError{
				Field:   "governance." + field,
				Message: fmt.Sprintf("must be positive, got %d", v),
			})
		}
	}
	nonNegative := func(field string, v int) {
		if v < 0 {
			errs = append(errs, FieldError{
				Field:   "governance." + field,
				Message: fmt.Sprintf("must be non-negative, got %d", v),
			})
		}
	}

	unit("drift_threshold", cfg.DriftThreshold, false)
	unit("violation_penalty", cfg.ViolationPenalty, true)
	unit("reaffirmation_relief", cfg.ReaffirmationRelief, true)
	unit("invocation_relief", cfg.InvocationRelief, true)
	unit("reinforcement_relief", cfg.ReinforcementRelief, true)
	unit("similarity_threshold", cfg.SimilarityThreshold, false)
	positive("consecutive_violation_limit", cfg.ConsecutiveViolationLimit)
	positive("history_size", cfg.HistorySize)
	nonNegative("streaming_min_length", cfg.StreamingMinLength)
	positive("integrity_check_interval", cfg.IntegrityCheckInterval)
	positive("persist_interval", cfg.PersistInterval)
	nonNegative("min_rule_count", cfg.MinRuleCount)
	nonNegative("min_memory_components", cfg.MinMemoryComponents)
	nonNegative("repetition_min_length", cfg.RepetitionMinLength)
	positive("repetition_prefix_length", cfg.RepetitionPrefixLength)
	positive("memory_log_limit", cfg.MemoryLogLimit)
	positive("token_limit", cfg.TokenLimit)

	if cfg.PatternsFile != "" {
		if _, err := os.Stat(cfg.PatternsFile); err != nil {
			errs = append(errs, FieldError{
				Field:   "governance.patterns_file",
				Message: fmt.Sprintf("patterns file not accessible: %v", err),
			})
		}
	}

	return errs
}

// validatePersistence validates state persistence configuration.
func validatePersistence(cfg *PersistenceConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.StateDir == "" {
		errs = append(errs, FieldError{
			Field:   "persistence.state_dir",
			Message: "state directory is required when persistence is enabled",
		})
	}

	return errs
}

// validateEventLog validates event log configuration.
func validateEventLog(cfg *EventLogConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"sqlite": true, "file": true, "memory": true, "none": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "event_log.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite', 'file', 'memory', or 'none'", cfg.Backend),
		})
	}

	if (cfg.Backend == "sqlite" || cfg.Backend == "file") && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "event_log.path",
			Message: fmt.Sprintf("path is required for the %s backend", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "event_log.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "event_log.sqlite.busy_timeout",
				Message: "busy timeout must be positive",
			})
		}
	}

	if cfg.MemoryCapacity < 0 {
		errs = append(errs, FieldError{
			Field:   "event_log.memory_capacity",
			Message: "memory capacity must be non-negative",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "event_log.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "event_log.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}
	if cfg.Metrics.MaxCommandLabels < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.max_command_labels",
			Message: "max command labels must be non-negative",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.liveness_path",
			Message: "liveness path must start with /",
		})
	}
	if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.readiness_path",
			Message: "readiness path must start with /",
		})
	}
	if cfg.Health.CheckTimeout > 60*time.Second {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout exceeds reasonable limit (60s)",
		})
	}

	return errs
}

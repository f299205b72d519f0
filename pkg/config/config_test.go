package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/governor/pkg/governance/engine"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "governor.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(DefaultConfig()) failed: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if !cfg.Persistence.Enabled || !cfg.Persistence.Resume {
		t.Error("expected persistence and resume enabled by default")
	}
	if !cfg.Telemetry.Metrics.Enabled || !cfg.Telemetry.Logging.RedactPII {
		t.Error("expected metrics and PII redaction enabled by default")
	}
	if cfg.Governance.Params() != engine.DefaultParams() {
		t.Errorf("default governance params = %+v, want %+v", cfg.Governance.Params(), engine.DefaultParams())
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.EventLog != first.EventLog || cfg.Server != first.Server || cfg.Governance != first.Governance {
		t.Error("ApplyDefaults() is not idempotent")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
server:
  listen_address: "0.0.0.0:9000"
  read_timeout: "45s"

governance:
  drift_threshold: 0.6
  history_size: 8

persistence:
  enabled: false

event_log:
  backend: "file"
  path: "events.jsonl"
  retention:
    days: 7

telemetry:
  logging:
    level: "debug"
    format: "text"
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9000", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("expected read timeout 45s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Governance.DriftThreshold != 0.6 || cfg.Governance.HistorySize != 8 {
		t.Errorf("governance overrides not applied: %+v", cfg.Governance)
	}
	if cfg.Governance.ViolationPenalty != engine.DefaultParams().ViolationPenalty {
		t.Errorf("expected default violation penalty, got %v", cfg.Governance.ViolationPenalty)
	}
	if cfg.Persistence.Enabled {
		t.Error("expected persistence disabled by file")
	}
	if !cfg.Persistence.Resume {
		t.Error("expected resume to keep its default")
	}
	if cfg.EventLog.Backend != "file" || cfg.EventLog.Retention.Days != 7 {
		t.Errorf("event log not loaded: %+v", cfg.EventLog)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics disabled by file")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad yaml", "server: [", ""},
		{"bad backend", "event_log:\n  backend: kafka\n", "event_log.backend"},
		{"bad driver", "event_log:\n  sqlite:\n    driver: postgres\n", "event_log.sqlite.driver"},
		{"bad schedule", "event_log:\n  retention:\n    prune_schedule: \"every day\"\n", "event_log.retention.prune_schedule"},
		{"bad threshold", "governance:\n  drift_threshold: 1.5\n", "governance.drift_threshold"},
		{"negative history", "governance:\n  history_size: -1\n", "governance.history_size"},
		{"missing patterns", "governance:\n  patterns_file: /no/such/patterns.yaml\n", "governance.patterns_file"},
		{"bad level", "telemetry:\n  logging:\n    level: loud\n", "telemetry.logging.level"},
		{"bad redact pattern", "telemetry:\n  logging:\n    redact_patterns:\n      - name: x\n        pattern: \"[\"\n", "telemetry.logging.redact_patterns[0].pattern"},
		{"tracing without endpoint", "telemetry:\n  tracing:\n    enabled: true\n", "telemetry.tracing.endpoint"},
		{"bad listen address", "server:\n  listen_address: nohost\n", "server.listen_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
			if tt.field == "" {
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field error for %s, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidationError_Message(t *testing.T) {
	one := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if one.Error() != "configuration validation failed: a: bad" {
		t.Errorf("Error() = %q", one.Error())
	}
	two := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(two.Error(), "2 errors") || !strings.Contains(two.Error(), "  - b: worse") {
		t.Errorf("Error() = %q", two.Error())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server:\n  listen_address: \"127.0.0.1:7000\"\n")

	t.Setenv("GOVERNOR_SERVER_LISTEN_ADDRESS", "127.0.0.1:7100")
	t.Setenv("GOVERNOR_GOVERNANCE_DRIFT_THRESHOLD", "0.25")
	t.Setenv("GOVERNOR_PERSISTENCE_ENABLED", "false")
	t.Setenv("GOVERNOR_EVENT_LOG_BACKEND", "memory")
	t.Setenv("GOVERNOR_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("GOVERNOR_GOVERNANCE_HISTORY_SIZE", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7100" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Governance.DriftThreshold != 0.25 {
		t.Errorf("drift threshold = %v", cfg.Governance.DriftThreshold)
	}
	if cfg.Persistence.Enabled {
		t.Error("expected persistence disabled by env")
	}
	if cfg.EventLog.Backend != "memory" || cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("env overrides not applied: backend=%q level=%q", cfg.EventLog.Backend, cfg.Telemetry.Logging.Level)
	}
	if cfg.Governance.HistorySize != engine.DefaultParams().HistorySize {
		t.Errorf("unparseable override changed history size to %d", cfg.Governance.HistorySize)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("GOVERNOR_EVENT_LOG_BACKEND", "none")
	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides(\"\") failed: %v", err)
	}
	if cfg.EventLog.Backend != "none" {
		t.Errorf("backend = %q, want none", cfg.EventLog.Backend)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidAfterOverride(t *testing.T) {
	t.Setenv("GOVERNOR_TELEMETRY_TRACING_SAMPLE_RATIO", "3")
	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Error("expected validation error after override")
	}
}

func TestSingleton(t *testing.T) {
	previous := GetConfig()
	t.Cleanup(func() { SetConfig(previous) })

	SetConfig(nil)
	if GetConfig() != nil {
		t.Error("GetConfig() should be nil before SetConfig")
	}

	cfg := DefaultConfig()
	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("GetConfig() did not return the stored config")
	}

	path := writeConfig(t, t.TempDir(), "governance:\n  history_size: 9\n")
	reloaded, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("ReloadConfig() failed: %v", err)
	}
	if GetConfig() != reloaded || reloaded.Governance.HistorySize != 9 {
		t.Error("ReloadConfig() did not replace the global config")
	}

	bad := writeConfig(t, t.TempDir(), "event_log:\n  backend: kafka\n")
	if _, err := ReloadConfig(bad); err == nil {
		t.Error("ReloadConfig() accepted an invalid file")
	}
	if GetConfig() != reloaded {
		t.Error("failed reload replaced the global config")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	previous := GetConfig()
	t.Cleanup(func() { SetConfig(previous) })

	dir := t.TempDir()
	path := writeConfig(t, dir, "governance:\n  history_size: 3\n")

	reloaded := make(chan *Config, 16)
	w := NewWatcher(path, func(cfg *Config) { reloaded <- cfg }, nil)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var got *Config
	for got == nil {
		select {
		case cfg := <-reloaded:
			got = cfg
		case <-ticker.C:
			writeConfig(t, dir, "governance:\n  history_size: 11\n")
		case <-deadline:
			cancel()
			t.Fatal("timed out waiting for reload")
		}
	}

	if got.Governance.HistorySize != 11 {
		t.Errorf("reloaded history size = %d, want 11", got.Governance.HistorySize)
	}
	if GetConfig() != got {
		t.Error("reload was not published through SetConfig")
	}

	if err := w.Watch(ctx); !errors.Is(err, ErrWatcherRunning) {
		t.Errorf("second Watch() = %v, want ErrWatcherRunning", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not stop on cancel")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "gone", "governor.yaml"), nil, nil)
	if err := w.Watch(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
	}
}

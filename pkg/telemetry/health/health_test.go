package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/governor/pkg/governance/detect"
	"mercator-hq/governor/pkg/governance/eventlog"
	"mercator-hq/governor/pkg/governance/rules"
)

func TestNew(t *testing.T) {
	if c := New(0); c.checkTimeout != 5*time.Second {
		t.Errorf("default timeout = %v, want 5s", c.checkTimeout)
	}
	if c := New(time.Second); c.checkTimeout != time.Second {
		t.Errorf("timeout = %v, want 1s", c.checkTimeout)
	}
}

func TestChecker_RegisterAndList(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("b", func(context.Context) error { return nil })
	c.RegisterCheck("a", func(context.Context) error { return nil })
	c.RegisterCheck("b", func(context.Context) error { return nil })

	got := c.ListChecks()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("ListChecks() = %v, want [a b]", got)
	}

	c.UnregisterCheck("a")
	if got := c.ListChecks(); len(got) != 1 {
		t.Errorf("ListChecks() after unregister = %v", got)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{name: "no checks", checks: nil, wantStatus: StatusReady},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"rules":     func(context.Context) error { return nil },
				"event_log": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"rules":     func(context.Context) error { return nil },
				"event_log": func(context.Context) error { return errors.New("database is locked") },
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, fn := range tt.checks {
				c.RegisterCheck(name, fn)
			}

			status := c.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	status := c.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check = %+v, want timeout", result)
	}
}

func TestHandlers(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("broken", func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		method   string
		wantCode int
	}{
		{"liveness", c.LivenessHandler(), http.MethodGet, http.StatusOK},
		{"liveness head", c.LivenessHandler(), http.MethodHead, http.StatusOK},
		{"liveness post", c.LivenessHandler(), http.MethodPost, http.StatusMethodNotAllowed},
		{"readiness degraded", c.ReadinessHandler(), http.MethodGet, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, "/", nil))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode readiness body failed: %v", err)
	}
	if status.Checks["broken"].Message != "down" {
		t.Errorf("broken check = %+v", status.Checks["broken"])
	}
}

func TestRegistryCheck(t *testing.T) {
	registry := rules.NewBuiltinRegistry()
	if err := RegistryCheck(registry, 1)(context.Background()); err != nil {
		t.Errorf("builtin registry check failed: %v", err)
	}
	if err := RegistryCheck(rules.NewRegistry(), 1)(context.Background()); err == nil {
		t.Error("empty registry should fail the check")
	}
}

func TestDetectorCheck(t *testing.T) {
	d, err := detect.NewAdversarial()
	if err != nil {
		t.Fatalf("NewAdversarial() failed: %v", err)
	}
	if err := DetectorCheck(d)(context.Background()); err != nil {
		t.Errorf("DetectorCheck() failed: %v", err)
	}
}

func TestDirWritableCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	if err := DirWritableCheck(dir)(context.Background()); err != nil {
		t.Fatalf("DirWritableCheck() failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := DirWritableCheck(filepath.Join(file, "sub"))(context.Background()); err == nil {
		t.Error("path under a regular file should fail")
	}
}

func TestEventLogCheck(t *testing.T) {
	ctx := context.Background()
	if err := EventLogCheck(eventlog.NopSink{})(ctx); err != nil {
		t.Errorf("non-queryable sink should pass: %v", err)
	}

	sink, err := eventlog.NewSQLiteSink(&eventlog.SQLiteConfig{
		Path:   filepath.Join(t.TempDir(), "events.db"),
		Driver: eventlog.DriverPure,
	})
	if err != nil {
		t.Fatalf("NewSQLiteSink() failed: %v", err)
	}
	check := EventLogCheck(sink)
	if err := check(ctx); err != nil {
		t.Errorf("open sink check failed: %v", err)
	}

	_ = sink.Close()
	if err := check(ctx); err == nil {
		t.Error("closed sink should fail the check")
	}
}

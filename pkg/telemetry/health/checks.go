package health

import (
	"context"
	"fmt"
	"os"

	"mercator-hq/governor/pkg/governance/detect"
	"mercator-hq/governor/pkg/governance/eventlog"
	"mercator-hq/governor/pkg/governance/rules"
)

// RegistryCheck fails when the registry holds fewer than minRules rules.
func RegistryCheck(registry *rules.Registry, minRules int) CheckFunc {
	return func(context.Context) error {
		if n := registry.Count(); n < minRules {
			return fmt.Errorf("rule registry has %d rules, want at least %d", n, minRules)
		}
		return nil
	}
}

// DetectorCheck fails when the adversarial detector misses any prompt in its
// own self-test corpus.
func DetectorCheck(detector *detect.Adversarial) CheckFunc {
	return func(context.Context) error {
		report := detector.SelfTest()
		if report.Detected != report.Total {
			return fmt.Errorf("adversarial self-test detected %d of %d", report.Detected, report.Total)
		}
		return nil
	}
}

// DirWritableCheck fails when dir cannot be created or written.
func DirWritableCheck(dir string) CheckFunc {
	return func(context.Context) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("state directory: %w", err)
		}
		f, err := os.CreateTemp(dir, ".health-*")
		if err != nil {
			return fmt.Errorf("state directory not writable: %w", err)
		}
		name := f.Name()
		_ = f.Close()
		return os.Remove(name)
	}
}

// EventLogCheck probes a queryable event log with a count query. Sinks that
// cannot be queried always pass.
func EventLogCheck(sink eventlog.Sink) CheckFunc {
	return func(ctx context.Context) error {
		store, ok := sink.(eventlog.Store)
		if !ok {
			return nil
		}
		if _, err := store.Count(ctx, eventlog.Filter{}); err != nil {
			return fmt.Errorf("event log: %w", err)
		}
		return nil
	}
}

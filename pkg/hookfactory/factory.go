// Package hookfactory builds the governance hooks for new sessions from the
// loaded configuration.
package hookfactory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"mercator-hq/governor/pkg/config"
	"mercator-hq/governor/pkg/governance/detect"
	"mercator-hq/governor/pkg/governance/engine"
	"mercator-hq/governor/pkg/governance/eventlog"
	"mercator-hq/governor/pkg/governance/rules"
	"mercator-hq/governor/pkg/governance/state"
	"mercator-hq/governor/pkg/hooks"
	"mercator-hq/governor/pkg/telemetry/health"
)

// Factory owns the resources shared by every session: the rule registry,
// the adversarial detector and the event sink. Engines built by NewSession
// borrow them; Close releases the sink.
//
// Factory is safe for concurrent use.
type Factory struct {
	registry *rules.Registry
	sink     eventlog.Sink
	observer engine.Observer
	logger   *slog.Logger

	mu          sync.RWMutex
	detector    *detect.Adversarial
	params      engine.Params
	persistence config.PersistenceConfig
}

// New builds a factory from cfg. observer may be nil.
func New(cfg *config.Config, observer engine.Observer) (*Factory, error) {
	detector, err := loadDetector(cfg.Governance.PatternsFile)
	if err != nil {
		return nil, err
	}

	sink, err := OpenEventLog(cfg.EventLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	if observer == nil {
		observer = engine.NopObserver{}
	}

	f := &Factory{
		registry:    rules.NewBuiltinRegistry(),
		sink:        sink,
		observer:    observer,
		logger:      slog.Default().With("component", "hookfactory"),
		detector:    detector,
		params:      cfg.Governance.Params(),
		persistence: cfg.Persistence,
	}

	f.logger.Info("hook factory ready",
		"rules", f.registry.Count(),
		"patterns", len(detector.PatternIDs()),
		"event_log", cfg.EventLog.Backend,
		"persistence", cfg.Persistence.Enabled,
	)
	return f, nil
}

// OpenEventLog opens the sink selected by cfg.
func OpenEventLog(cfg config.EventLogConfig) (eventlog.Sink, error) {
	return eventlog.Open(eventlog.Options{
		Backend:        cfg.Backend,
		Path:           cfg.Path,
		SQLiteDriver:   cfg.SQLite.Driver,
		MemoryCapacity: cfg.MemoryCapacity,
		BusyTimeout:    cfg.SQLite.BusyTimeout,
	})
}

func loadDetector(patternsFile string) (*detect.Adversarial, error) {
	if patternsFile == "" {
		return detect.NewAdversarial()
	}
	data, err := os.ReadFile(patternsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns file: %w", err)
	}
	return detect.ParseAdversarial(data)
}

// NewSession builds the hooks for sessionID. It satisfies hooks.Factory.
func (f *Factory) NewSession(sessionID string) ([]hooks.Hook, error) {
	f.mu.RLock()
	params := f.params
	detector := f.detector
	persistence := f.persistence
	f.mu.RUnlock()

	var store state.Store
	resume := false
	if persistence.Enabled {
		store = state.NewFileStore(state.SessionPath(persistence.StateDir, sessionID))
		resume = persistence.Resume
	} else {
		store = state.NewMemoryStore()
	}

	e, err := engine.New(engine.Options{
		SessionID: sessionID,
		Registry:  f.registry,
		Detector:  detector,
		Store:     store,
		Events:    f.sink,
		Observer:  f.observer,
		Params:    &params,
		Resume:    resume,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create governance engine: %w", err)
	}
	return []hooks.Hook{e}, nil
}

// Apply takes the governance and persistence settings from a reloaded
// configuration. Existing sessions keep the settings they were built with.
// The event log backend is not reopened.
func (f *Factory) Apply(cfg *config.Config) error {
	params := cfg.Governance.Params()
	if err := params.Validate(); err != nil {
		return err
	}
	detector, err := loadDetector(cfg.Governance.PatternsFile)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.params = params
	f.detector = detector
	f.persistence = cfg.Persistence
	f.mu.Unlock()

	f.logger.Info("applied reloaded governance settings",
		"drift_threshold", params.DriftThreshold,
		"patterns", len(detector.PatternIDs()),
	)
	return nil
}

// Registry returns the shared rule registry.
func (f *Factory) Registry() *rules.Registry {
	return f.registry
}

// Detector returns the current adversarial detector.
func (f *Factory) Detector() *detect.Adversarial {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.detector
}

// Sink returns the shared event sink.
func (f *Factory) Sink() eventlog.Sink {
	return f.sink
}

// RegisterHealthChecks adds readiness checks for the shared resources.
func (f *Factory) RegisterHealthChecks(checker *health.Checker) {
	f.mu.RLock()
	minRules := f.params.MinRuleCount
	persistence := f.persistence
	f.mu.RUnlock()

	checker.RegisterCheck("rules", health.RegistryCheck(f.registry, minRules))
	checker.RegisterCheck("adversarial_detector", func(ctx context.Context) error {
		return health.DetectorCheck(f.Detector())(ctx)
	})
	checker.RegisterCheck("event_log", health.EventLogCheck(f.sink))
	if persistence.Enabled {
		checker.RegisterCheck("state_dir", health.DirWritableCheck(persistence.StateDir))
	}
}

// Close closes the event sink. Sessions must be closed first so their final
// snapshots and events are written.
func (f *Factory) Close() error {
	return f.sink.Close()
}

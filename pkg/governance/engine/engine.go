package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"mercator-hq/governor/pkg/governance/detect"
	"mercator-hq/governor/pkg/governance/eventlog"
	"mercator-hq/governor/pkg/governance/rules"
	"mercator-hq/governor/pkg/governance/state"
)

// HookID identifies the governance engine inside a composite.
const HookID = "governance"

// State is the mutable governance state of one session.
type State struct {
	Initialized           bool        `json:"initialized"`
	Cycle                 int         `json:"cycle"`
	DriftScore            float64     `json:"drift_score"`
	AverageDrift          float64     `json:"average_drift"`
	ConsecutiveViolations int         `json:"consecutive_violations"`
	ReinforcementCycles   int         `json:"reinforcement_cycles"`
	AdversarialDetections int         `json:"adversarial_detections"`
	InvocationCounts      map[int]int `json:"invocation_counts"`
	ViolationCounts       map[int]int `json:"violation_counts"`
	IntegrityHash         string      `json:"integrity_hash"`
	InReinforcement       bool        `json:"in_reinforcement"`
}

func (s State) clone() State {
	s.InvocationCounts = maps.Clone(s.InvocationCounts)
	s.ViolationCounts = maps.Clone(s.ViolationCounts)
	return s
}

// Options configures a new Engine. Zero fields get working defaults.
type Options struct {
	SessionID string

	// Registry is shared by every session; a fresh built-in registry is
	// created when nil.
	Registry *rules.Registry

	Detector *detect.Adversarial
	Store    state.Store
	Events   eventlog.Sink
	Observer Observer
	Logger   *slog.Logger
	Params   *Params

	// Resume loads the stored snapshot at construction so a session
	// continues where it left off.
	Resume bool

	Now func() time.Time
}

// Engine enforces the governance rule set for one session. All exported
// methods are safe for concurrent use and serialize on one lock.
type Engine struct {
	mu sync.Mutex

	registry   *rules.Registry
	detector   *detect.Adversarial
	repetition detect.Repetition
	store      state.Store
	events     eventlog.Sink
	observer   Observer
	logger     *slog.Logger
	params     Params
	sessionID  string
	now        func() time.Time

	state   State
	history []string
	memory  *memoryKernel
}

// New creates an engine. It fails only on invalid params or an unloadable
// pattern set.
func New(opts Options) (*Engine, error) {
	params := DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		registry:  opts.Registry,
		detector:  opts.Detector,
		store:     opts.Store,
		events:    opts.Events,
		observer:  opts.Observer,
		logger:    opts.Logger,
		params:    params,
		sessionID: opts.SessionID,
		now:       opts.Now,
		repetition: detect.Repetition{
			MinLength:    params.RepetitionMinLength,
			Threshold:    params.SimilarityThreshold,
			PrefixLength: params.RepetitionPrefixLength,
		},
		memory: newMemoryKernel(params.MemoryLogLimit, params.TokenLimit),
		state: State{
			InvocationCounts: make(map[int]int),
			ViolationCounts:  make(map[int]int),
		},
	}

	if e.registry == nil {
		e.registry = rules.NewBuiltinRegistry()
	}
	if e.detector == nil {
		d, err := detect.NewAdversarial()
		if err != nil {
			return nil, fmt.Errorf("load adversarial patterns: %w", err)
		}
		e.detector = d
	}
	if e.store == nil {
		e.store = state.NewMemoryStore()
	}
	if e.events == nil {
		e.events = eventlog.NopSink{}
	}
	if e.observer == nil {
		e.observer = NopObserver{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "governance.engine", "session_id", e.sessionID)
	if e.now == nil {
		e.now = time.Now
	}

	e.state.IntegrityHash = e.fingerprint()

	if opts.Resume {
		switch err := e.reload(); {
		case err == nil:
			e.state.Initialized = true
			e.logger.Info("resumed governance session", "cycle", e.state.Cycle)
		case errors.Is(err, state.ErrNoSnapshot):
		default:
			e.logger.Warn("ignoring stored governance state", "error", err)
		}
	}

	e.logger.Debug("governance engine constructed",
		"rules", e.registry.Count(),
		"memory_components", len(e.memory.components),
	)
	return e, nil
}

// ID returns the hook identifier.
func (e *Engine) ID() string {
	return HookID
}

// OnCycleStart advances the session by one generation cycle.
func (e *Engine) OnCycleStart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Cycle++
	e.observer.CycleStarted()

	if !e.state.Initialized {
		e.initialize()
	} else if !e.integrityIntact() {
		e.logEvent(eventlog.TypeIntegrityFailure,
			fmt.Sprintf("Governance integrity check failed on cycle %d", e.state.Cycle))
		e.recoverIntegrity()
	}

	e.reaffirmPurpose()

	if e.state.DriftScore > e.params.DriftThreshold && !e.state.InReinforcement {
		e.logger.Debug("drift exceeds threshold, reinforcing", "drift_score", e.state.DriftScore)
		e.reinforce()
	}

	if e.state.Cycle%e.params.IntegrityCheckInterval == 0 {
		ok := e.integrityIntact()
		e.memory.flags.integrity = ok
		e.logEvent(eventlog.TypeIntegrityCheck,
			fmt.Sprintf("Memory kernel integrity verification on cycle %d: %s", e.state.Cycle, passFail(ok)))
	}

	if e.state.Cycle%e.params.PersistInterval == 0 {
		_ = e.persist()
	}

	e.observer.DriftObserved(e.state.DriftScore)
}

// Finalize runs the finalize checks over a complete response. The first rule
// that fires replaces the response; otherwise the response is remembered and
// returned unchanged. Text carrying the repetition enforcement marker skips
// the repetition checks and is not remembered.
func (e *Engine) Finalize(text string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	enforced := strings.Contains(text, enforcementMarker())

	blockedBy := 0
	out, fired := e.registry.Evaluate(text, "", func(rule rules.Rule, input string) (string, bool) {
		if enforced && rule.Finalize == rules.KindRepetition {
			return "", false
		}
		msg, ok := e.runFinalize(rule, input)
		if ok {
			blockedBy = rule.ID
		}
		return msg, ok
	})
	e.observer.ResponseFinalized(blockedBy)
	if fired {
		e.logger.Info("response blocked", "rule_id", blockedBy)
		return out
	}

	if !enforced {
		e.remember(text)
	}
	return text
}

// StreamingCheck runs the streaming checks over partial output and returns
// the first warning. Content is never modified.
func (e *Engine) StreamingCheck(partial string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(partial) < e.params.StreamingMinLength {
		return "", false
	}

	for _, rule := range e.registry.All() {
		warning, ok := e.runStreaming(rule, partial)
		if ok {
			e.observer.StreamingWarned(rule.ID)
			return warning, true
		}
	}
	return "", false
}

// Alignment scores how well a token aligns with governance, in [0, 1].
func (e *Engine) Alignment(token string) float64 {
	return e.detector.Alignment(token)
}

// State returns a copy of the current governance state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// History returns the remembered responses, oldest first.
func (e *Engine) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.history))
	copy(out, e.history)
	return out
}

// Reload replaces the session state with the stored snapshot. The snapshot
// is rejected when its fingerprint does not match the live rule set.
func (e *Engine) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.reload(); err != nil {
		return err
	}
	e.state.Initialized = true
	return nil
}

// Close persists the session state if the session was initialized.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Initialized {
		return nil
	}
	return e.persist()
}

func (e *Engine) initialize() {
	e.state.Initialized = true
	e.memory.arm()
	e.state.IntegrityHash = e.fingerprint()

	e.logEvent(eventlog.TypeInitialization,
		fmt.Sprintf("Governance kernel initialized on cycle %d with %d rules and %d memory components",
			e.state.Cycle, e.registry.Count(), len(e.memory.components)))
	e.logger.Info("governance initialized",
		"cycle", e.state.Cycle,
		"rules", e.registry.Count(),
		"integrity_hash", e.state.IntegrityHash,
	)
	_ = e.persist()
}

// recoverIntegrity tries the stored snapshot first and reinitializes when
// it is missing, unreadable or stale.
func (e *Engine) recoverIntegrity() {
	if err := e.reload(); err != nil {
		e.logger.Warn("governance state reload failed, reinitializing", "error", err)
		e.observer.IntegrityRecovered(RecoveryReinitialize)
		e.initialize()
		return
	}
	e.observer.IntegrityRecovered(RecoveryReload)
}

func (e *Engine) reload() error {
	snap, err := e.store.Load()
	if err != nil {
		return err
	}

	if e.registry.Count() < e.params.MinRuleCount {
		if err := e.registry.Restore(snap.Rules, rules.ResolveBuiltin); err != nil {
			e.logger.Warn("restored rule catalog is incomplete", "error", err)
		}
	}

	if live := e.fingerprint(); snap.IntegrityHash != live {
		return fmt.Errorf("%w: stored fingerprint %s does not match live fingerprint %s",
			state.ErrInvalidSnapshot, snap.IntegrityHash, live)
	}

	e.state.Cycle = snap.Cycle
	e.state.IntegrityHash = snap.IntegrityHash
	e.state.DriftScore = clamp01(snap.DriftScore)
	e.state.ViolationCounts = maps.Clone(snap.ViolationCounts)
	e.state.InvocationCounts = maps.Clone(snap.InvocationCounts)
	e.state.ReinforcementCycles = snap.ReinforcementCycles
	e.state.AdversarialDetections = snap.AdversarialDetections
	e.state.ConsecutiveViolations = snap.ConsecutiveViolations
	if e.state.ViolationCounts == nil {
		e.state.ViolationCounts = make(map[int]int)
	}
	if e.state.InvocationCounts == nil {
		e.state.InvocationCounts = make(map[int]int)
	}
	e.memory.arm()

	e.logEvent(eventlog.TypeStateRestored,
		fmt.Sprintf("Governance state restored from snapshot of cycle %d", snap.Cycle))
	return nil
}

func (e *Engine) persist() error {
	snap := &state.Snapshot{
		Timestamp:             e.now(),
		Cycle:                 e.state.Cycle,
		IntegrityHash:         e.state.IntegrityHash,
		DriftScore:            e.state.DriftScore,
		ViolationCounts:       e.state.ViolationCounts,
		InvocationCounts:      e.state.InvocationCounts,
		ReinforcementCycles:   e.state.ReinforcementCycles,
		AdversarialDetections: e.state.AdversarialDetections,
		ConsecutiveViolations: e.state.ConsecutiveViolations,
		Rules:                 e.registry.Catalog(),
	}
	if err := e.store.Save(snap); err != nil {
		e.logger.Warn("failed to persist governance state", "error", err)
		e.observer.PersistenceFailed(TargetState)
		return err
	}
	return nil
}

// reinforce runs one corrective pass. Re-entry is ignored.
func (e *Engine) reinforce() {
	if e.state.InReinforcement {
		e.logger.Debug("already in reinforcement cycle, skipping")
		return
	}
	e.state.InReinforcement = true
	defer func() { e.state.InReinforcement = false }()

	e.state.ReinforcementCycles++
	e.logEvent(eventlog.TypeReinforcementCycle,
		fmt.Sprintf("Recursive reinforcement cycle #%d initiated. Drift score: %f",
			e.state.ReinforcementCycles, e.state.DriftScore))

	if !e.integrityIntact() {
		e.logger.Warn("integrity compromised during reinforcement")
		e.recoverIntegrity()
	}

	e.state.DriftScore = max(0, e.state.DriftScore-e.params.ReinforcementRelief)
	e.state.ConsecutiveViolations = 0

	e.logEvent(eventlog.TypeReinforcementCompleted,
		fmt.Sprintf("Recursive reinforcement cycle completed. New drift score: %f", e.state.DriftScore))
	e.observer.ReinforcementCompleted()
}

func (e *Engine) updateDrift(delta float64) {
	e.state.DriftScore = clamp01(e.state.DriftScore + delta)
	e.state.AverageDrift = e.state.AverageDrift*0.9 + e.state.DriftScore*0.1
}

func (e *Engine) runFinalize(rule rules.Rule, input string) (string, bool) {
	switch rule.Finalize {
	case rules.KindAdversarial:
		match, ok := e.detector.Detect(input)
		if !ok {
			return "", false
		}
		e.logger.Info("adversarial input detected", "rule_id", rule.ID, "pattern", match.PatternID)
		e.state.AdversarialDetections++
		e.recordViolation(rule)
		return fmt.Sprintf("Adversarial input detected and blocked by Rule %d.", rule.ID), true

	case rules.KindRepetition:
		finding, ok := e.repetition.Check(input, e.history)
		if !ok {
			return "", false
		}
		e.logEvent(eventlog.TypeResponseBlocked,
			fmt.Sprintf("Rule %d blocked a response: %s", rule.ID, finding.Reason))
		return fmt.Sprintf("Rule %d enforcement: %s. (similarity: %s). Please provide a different response.",
			rule.ID, finding.Reason, similarityText(finding)), true
	}
	return "", false
}

func (e *Engine) runStreaming(rule rules.Rule, partial string) (string, bool) {
	switch rule.Streaming {
	case rules.KindRepetition:
		if finding, ok := e.repetition.Check(partial, e.history); ok {
			return fmt.Sprintf("Rule %d warning: %s. Please try a different approach.", rule.ID, finding.Reason), true
		}
	case rules.KindAdversarial:
		if _, ok := e.detector.Detect(partial); ok {
			return fmt.Sprintf("Rule %d warning: Adversarial input detected. Please try a different approach.", rule.ID), true
		}
	}
	return "", false
}

// remember appends a passing response to the bounded history.
func (e *Engine) remember(text string) {
	if len(e.history) >= e.params.HistorySize {
		e.history = e.history[1:]
	}
	e.history = append(e.history, text)
}

func (e *Engine) logEvent(typ eventlog.Type, description string) {
	e.memory.record(string(typ) + ": " + description)

	ev := eventlog.Event{
		Timestamp:   e.now(),
		SessionID:   e.sessionID,
		Cycle:       e.state.Cycle,
		Type:        typ,
		Description: description,
		DriftScore:  e.state.DriftScore,
	}
	if err := e.events.Append(context.Background(), ev); err != nil {
		e.logger.Warn("failed to append governance event", "type", typ, "error", err)
		e.observer.PersistenceFailed(TargetEventLog)
	}
}

func enforcementMarker() string {
	return fmt.Sprintf("Rule %d enforcement", rules.RuleRepetition)
}

func similarityText(f detect.Finding) string {
	if f.Exact || f.Similarity >= 1.0 {
		return "exact match"
	}
	return strconv.FormatFloat(f.Similarity, 'f', 6, 64)
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// formatFloat renders v with six significant digits.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

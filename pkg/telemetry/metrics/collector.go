package metrics

import (
	"strconv"
	"sync"
	"time"

	"mercator-hq/governor/pkg/config"
	"mercator-hq/governor/pkg/governance/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for finalized responses.
const (
	OutcomePassed  = "passed"
	OutcomeBlocked = "blocked"
)

// Command status labels.
const (
	CommandKnown   = "ok"
	CommandUnknown = "unknown"
)

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// Collector owns every governor metric. It implements engine.Observer, so
// one collector can be shared by all sessions.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	governance *GovernanceMetrics
	http       *HTTPMetrics

	activeSessions prometheus.Gauge

	// Unknown command names come from model output.
	commandLimiter *CardinalityLimiter
	knownCommands  map[string]bool
}

var _ engine.Observer = (*Collector)(nil)

// NewCollector creates a collector and registers its metrics. If registry is
// nil a new one is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DriftBuckets) == 0 {
		cfg.DriftBuckets = append([]float64(nil), config.DefaultDriftBuckets...)
	}
	if cfg.MaxCommandLabels == 0 {
		cfg.MaxCommandLabels = config.DefaultMaxCommandLabels
	}

	known := make(map[string]bool)
	for _, name := range engine.Commands() {
		known[name] = true
	}

	c := &Collector{
		config:         cfg,
		registry:       registry,
		governance:     NewGovernanceMetrics(cfg, registry),
		http:           NewHTTPMetrics(cfg, registry),
		commandLimiter: NewCardinalityLimiter(cfg.MaxCommandLabels),
		knownCommands:  known,
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "active_sessions",
			Help:      "Number of governance sessions currently held in memory",
		}),
	}
	registry.MustRegister(c.activeSessions)

	return c
}

// Registry returns the registry the collector registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CycleStarted counts an inference cycle.
func (c *Collector) CycleStarted() {
	if !c.config.Enabled {
		return
	}
	c.governance.cyclesTotal.Inc()
}

// ResponseFinalized counts a finalized response by outcome and rule.
func (c *Collector) ResponseFinalized(blockedBy int) {
	if !c.config.Enabled {
		return
	}
	if blockedBy == 0 {
		c.governance.responsesTotal.WithLabelValues(OutcomePassed, "").Inc()
		return
	}
	c.governance.responsesTotal.WithLabelValues(OutcomeBlocked, strconv.Itoa(blockedBy)).Inc()
}

// StreamingWarned counts a streaming warning.
func (c *Collector) StreamingWarned(ruleID int) {
	if !c.config.Enabled {
		return
	}
	c.governance.streamingWarnings.WithLabelValues(strconv.Itoa(ruleID)).Inc()
}

// ViolationLogged counts a rule violation.
func (c *Collector) ViolationLogged(ruleID int) {
	if !c.config.Enabled {
		return
	}
	c.governance.violationsTotal.WithLabelValues(strconv.Itoa(ruleID)).Inc()
}

// ReinforcementCompleted counts a reinforcement pass.
func (c *Collector) ReinforcementCompleted() {
	if !c.config.Enabled {
		return
	}
	c.governance.reinforcementsTotal.Inc()
}

// IntegrityRecovered counts an integrity failure by recovery path.
func (c *Collector) IntegrityRecovered(path string) {
	if !c.config.Enabled {
		return
	}
	c.governance.integrityFailures.WithLabelValues(path).Inc()
}

// CommandHandled counts a governance command. Unknown command names are
// subject to the cardinality limit.
func (c *Collector) CommandHandled(command string, known bool) {
	if !c.config.Enabled {
		return
	}
	status := CommandKnown
	if !known {
		status = CommandUnknown
		if !c.knownCommands[command] && !c.commandLimiter.Allow(command) {
			command = otherLabel
		}
	}
	c.governance.commandsTotal.WithLabelValues(command, status).Inc()
}

// DriftObserved records a drift score sample.
func (c *Collector) DriftObserved(drift float64) {
	if !c.config.Enabled {
		return
	}
	c.governance.driftScore.Observe(drift)
}

// PersistenceFailed counts a failed state save or event log write.
func (c *Collector) PersistenceFailed(target string) {
	if !c.config.Enabled {
		return
	}
	c.governance.persistenceFailures.WithLabelValues(target).Inc()
}

// SetActiveSessions sets the active session gauge.
func (c *Collector) SetActiveSessions(n int) {
	if !c.config.Enabled {
		return
	}
	c.activeSessions.Set(float64(n))
}

// RecordHTTPRequest records a served HTTP request. route is the registered
// pattern, never the raw path, so session IDs stay out of labels.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.http.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.http.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordRetentionPrune records a retention run.
func (c *Collector) RecordRetentionPrune(deleted int64, err error) {
	if !c.config.Enabled {
		return
	}
	if err != nil {
		c.governance.pruneRuns.WithLabelValues("error").Inc()
		return
	}
	c.governance.pruneRuns.WithLabelValues("success").Inc()
	c.governance.prunedEvents.Add(float64(deleted))
}

// CardinalityLimiter caps the number of distinct label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Values already seen
// are always allowed.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}

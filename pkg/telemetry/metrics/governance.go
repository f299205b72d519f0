package metrics

import (
	"mercator-hq/governor/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// GovernanceMetrics tracks engine activity across all sessions.
//
// Metrics (with the default namespace and subsystem):
//   - governor_hooks_cycles_total
//   - governor_hooks_responses_total{outcome, rule_id}
//   - governor_hooks_streaming_warnings_total{rule_id}
//   - governor_hooks_violations_total{rule_id}
//   - governor_hooks_reinforcements_total
//   - governor_hooks_integrity_failures_total{recovery}
//   - governor_hooks_commands_total{command, status}
//   - governor_hooks_drift_score
//   - governor_hooks_persistence_failures_total{target}
//   - governor_hooks_retention_runs_total{status}
//   - governor_hooks_retention_pruned_events_total
type GovernanceMetrics struct {
	cyclesTotal         prometheus.Counter
	responsesTotal      *prometheus.CounterVec
	streamingWarnings   *prometheus.CounterVec
	violationsTotal     *prometheus.CounterVec
	reinforcementsTotal prometheus.Counter
	integrityFailures   *prometheus.CounterVec
	commandsTotal       *prometheus.CounterVec
	driftScore          prometheus.Histogram
	persistenceFailures *prometheus.CounterVec
	pruneRuns           *prometheus.CounterVec
	prunedEvents        prometheus.Counter
}

// NewGovernanceMetrics creates and registers governance metrics.
func NewGovernanceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GovernanceMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}

	gm := &GovernanceMetrics{
		cyclesTotal:         counter("cycles_total", "Total inference cycles started"),
		responsesTotal:      counterVec("responses_total", "Finalized responses by outcome and blocking rule", "outcome", "rule_id"),
		streamingWarnings:   counterVec("streaming_warnings_total", "Warnings raised on partial output", "rule_id"),
		violationsTotal:     counterVec("violations_total", "Rule violations logged", "rule_id"),
		reinforcementsTotal: counter("reinforcements_total", "Recursive reinforcement passes completed"),
		integrityFailures:   counterVec("integrity_failures_total", "Integrity check failures by recovery path", "recovery"),
		commandsTotal:       counterVec("commands_total", "Governance commands handled", "command", "status"),
		driftScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "drift_score",
			Help:      "Drift score after each drift-changing event",
			Buckets:   cfg.DriftBuckets,
		}),
		persistenceFailures: counterVec("persistence_failures_total", "Failed state saves and event log writes", "target"),
		pruneRuns:           counterVec("retention_runs_total", "Event retention runs by status", "status"),
		prunedEvents:        counter("retention_pruned_events_total", "Events deleted by retention"),
	}

	registry.MustRegister(
		gm.cyclesTotal,
		gm.responsesTotal,
		gm.streamingWarnings,
		gm.violationsTotal,
		gm.reinforcementsTotal,
		gm.integrityFailures,
		gm.commandsTotal,
		gm.driftScore,
		gm.persistenceFailures,
		gm.pruneRuns,
		gm.prunedEvents,
	)

	return gm
}

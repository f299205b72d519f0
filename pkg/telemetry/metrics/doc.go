// Package metrics provides Prometheus metrics for the governor.
//
// Collector implements engine.Observer and is passed to every session's
// engine, so counters aggregate across sessions. Rule IDs and command names
// are the only dynamic labels; unknown command names come from model output
// and are capped by a CardinalityLimiter.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics

// Package health provides liveness and readiness probes for the governor.
//
// Liveness answers 200 whenever the process can serve HTTP. Readiness runs
// every registered check concurrently and answers 503 if any fails. The
// governor registers checks for the rule registry, the adversarial
// detector, the state directory and the event log:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("rules", health.RegistryCheck(registry, params.MinRuleCount))
//	checker.RegisterCheck("event_log", health.EventLogCheck(sink))
//	mux.Handle("GET /ready", checker.ReadinessHandler())
package health

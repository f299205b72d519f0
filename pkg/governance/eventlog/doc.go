// Package eventlog records the governance audit trail.
//
// Every state change the engine makes (violations, invocations,
// reinforcement cycles, integrity checks, blocked responses) is appended
// to a Sink as an Event. Sinks are available for JSON-lines files, SQLite
// (with either the CGO or the pure-Go driver), a bounded in-memory ring,
// and a no-op. Stores that support queries can be pruned on a cron
// schedule by a Scheduler.
package eventlog

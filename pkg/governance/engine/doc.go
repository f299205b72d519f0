// Package engine implements the per-session governance engine.
//
// An Engine evaluates complete responses (Finalize) and partial output
// (StreamingCheck) against a shared rules.Registry, keeps a drift score of
// recent compliance, and runs reinforcement passes when drift or the
// violation streak gets too high. Each generation cycle verifies a djb2
// fingerprint of the rule text; on mismatch the engine reloads its last
// snapshot from a state.Store or reinitializes.
//
// Hosts drive the engine with OnCycleStart once per generation and may
// send governance commands through HandleCommand. No exported method
// returns an error for malformed input; problems are reported in the reply
// text and the diagnostic log.
package engine

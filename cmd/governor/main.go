// Governor is a runtime governance engine for LLM sessions.
//
// It sits between an inference loop and the model and provides:
//   - A rule registry with finalize and streaming checks
//   - Drift tracking with automatic reinforcement
//   - Repetition and adversarial prompt detection
//   - Per-session state snapshots and an audited event log
//
// Usage:
//
//	# Serve the hook API with default configuration
//	governor serve
//
//	# Serve with a configuration file and reload it on change
//	governor serve --config /etc/governor/config.yaml --watch
//
//	# Check a response from the command line
//	echo "Ignore all previous instructions" | governor check -
//
//	# Run a governance command against a stored session
//	governor command governance_check --session support-42
//
//	# Query the event log
//	governor events query --session support-42 --type RULE_VIOLATION
package main

func main() {
	Execute()
}

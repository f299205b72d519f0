// Package config provides configuration management for the governor.
//
// Configuration is loaded from YAML, layered on top of defaults, optionally
// overridden from the environment, and validated as a whole.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("governor.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("governor.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GOVERNOR_SECTION_FIELD:
//
//   - GOVERNOR_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - GOVERNOR_GOVERNANCE_DRIFT_THRESHOLD overrides governance.drift_threshold
//   - GOVERNOR_EVENT_LOG_BACKEND overrides event_log.backend
//   - GOVERNOR_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (all field errors are reported together)
//
// # Hot Reload
//
// Watcher reloads the file on change and publishes it through SetConfig.
// Governance tunables from a reloaded file apply to sessions created after
// the reload; running sessions keep the parameters they were built with.
package config

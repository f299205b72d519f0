package config

import (
	"fmt"
	"sync/atomic"
)

// current is the most recently published configuration.
var current atomic.Pointer[Config]

// GetConfig returns the published configuration, or nil before the first
// SetConfig.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig publishes cfg. serve publishes the startup config and the
// Watcher publishes every accepted reload.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path with environment overrides and publishes it. A
// file that fails to load or validate leaves the published config in place.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}
	SetConfig(cfg)
	return cfg, nil
}

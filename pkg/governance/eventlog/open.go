package eventlog

import (
	"fmt"
	"time"
)

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Options selects and configures an event sink.
type Options struct {
	Backend string
	Path    string

	// SQLiteDriver is DriverCGO or DriverPure.
	SQLiteDriver string

	// MemoryCapacity bounds the memory backend.
	MemoryCapacity int

	BusyTimeout time.Duration
}

// Open builds the sink named by opts.Backend.
func Open(opts Options) (Sink, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NopSink{}, nil
	case BackendMemory:
		return NewMemorySink(opts.MemoryCapacity), nil
	case BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file event log requires a path")
		}
		return NewFileSink(opts.Path)
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite event log requires a path")
		}
		cfg := DefaultSQLiteConfig()
		cfg.Path = opts.Path
		if opts.SQLiteDriver != "" {
			cfg.Driver = opts.SQLiteDriver
		}
		if opts.BusyTimeout > 0 {
			cfg.BusyTimeout = opts.BusyTimeout
		}
		return NewSQLiteSink(cfg)
	default:
		return nil, fmt.Errorf("unknown event log backend %q", opts.Backend)
	}
}

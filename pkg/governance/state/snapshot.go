// Package state persists governance engine snapshots.
//
// A Snapshot is the durable subset of a session's governance state: counters,
// drift, the integrity fingerprint and the rule catalog it was computed over.
// Stores are synchronous; callers hold their own locks.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mercator-hq/governor/pkg/governance/rules"
)

var (
	// ErrNoSnapshot is returned by Load when nothing has been saved yet.
	ErrNoSnapshot = errors.New("no snapshot")

	// ErrInvalidSnapshot is returned by Load when the stored document cannot
	// be parsed or is missing a required field.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Snapshot is the persisted form of a session's governance state.
type Snapshot struct {
	Timestamp             time.Time       `json:"timestamp"`
	Cycle                 int             `json:"cycle"`
	IntegrityHash         string          `json:"integrity_hash"`
	DriftScore            float64         `json:"drift_score"`
	ViolationCounts       map[int]int     `json:"rule_violation_counts"`
	InvocationCounts      map[int]int     `json:"rule_invocation_counts"`
	ReinforcementCycles   int             `json:"reinforcement_cycles"`
	AdversarialDetections int             `json:"adversarial_attempts"`
	ConsecutiveViolations int             `json:"consecutive_violations"`
	Rules                 []rules.Summary `json:"rules"`
}

// Store loads and saves a single snapshot.
type Store interface {
	// Load returns the last saved snapshot, ErrNoSnapshot when none exists,
	// or an error wrapping ErrInvalidSnapshot when it cannot be read back.
	Load() (*Snapshot, error)

	// Save replaces the stored snapshot.
	Save(s *Snapshot) error
}

// rawSnapshot mirrors Snapshot with pointer fields so that absent keys can be
// told apart from zero values.
type rawSnapshot struct {
	Timestamp             *time.Time       `json:"timestamp"`
	Cycle                 *int             `json:"cycle"`
	IntegrityHash         *string          `json:"integrity_hash"`
	DriftScore            *float64         `json:"drift_score"`
	ViolationCounts       *map[int]int     `json:"rule_violation_counts"`
	InvocationCounts      *map[int]int     `json:"rule_invocation_counts"`
	ReinforcementCycles   *int             `json:"reinforcement_cycles"`
	AdversarialDetections *int             `json:"adversarial_attempts"`
	ConsecutiveViolations *int             `json:"consecutive_violations"`
	Rules                 *[]rules.Summary `json:"rules"`
}

// Encode renders a snapshot as indented JSON.
func Encode(s *Snapshot) ([]byte, error) {
	out := *s
	if out.ViolationCounts == nil {
		out.ViolationCounts = map[int]int{}
	}
	if out.InvocationCounts == nil {
		out.InvocationCounts = map[int]int{}
	}
	if out.Rules == nil {
		out.Rules = []rules.Summary{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot, requiring every field to be present.
func Decode(data []byte) (*Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: missing field %q", ErrInvalidSnapshot, field)
	}
	switch {
	case raw.Timestamp == nil:
		return nil, missing("timestamp")
	case raw.Cycle == nil:
		return nil, missing("cycle")
	case raw.IntegrityHash == nil:
		return nil, missing("integrity_hash")
	case raw.DriftScore == nil:
		return nil, missing("drift_score")
	case raw.ViolationCounts == nil:
		return nil, missing("rule_violation_counts")
	case raw.InvocationCounts == nil:
		return nil, missing("rule_invocation_counts")
	case raw.ReinforcementCycles == nil:
		return nil, missing("reinforcement_cycles")
	case raw.AdversarialDetections == nil:
		return nil, missing("adversarial_attempts")
	case raw.ConsecutiveViolations == nil:
		return nil, missing("consecutive_violations")
	case raw.Rules == nil:
		return nil, missing("rules")
	}

	s := &Snapshot{
		Timestamp:             *raw.Timestamp,
		Cycle:                 *raw.Cycle,
		IntegrityHash:         *raw.IntegrityHash,
		DriftScore:            *raw.DriftScore,
		ViolationCounts:       *raw.ViolationCounts,
		InvocationCounts:      *raw.InvocationCounts,
		ReinforcementCycles:   *raw.ReinforcementCycles,
		AdversarialDetections: *raw.AdversarialDetections,
		ConsecutiveViolations: *raw.ConsecutiveViolations,
		Rules:                 *raw.Rules,
	}
	if s.ViolationCounts == nil {
		s.ViolationCounts = map[int]int{}
	}
	if s.InvocationCounts == nil {
		s.InvocationCounts = map[int]int{}
	}
	return s, nil
}

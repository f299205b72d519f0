package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned by New when Params fail validation.
var ErrInvalidParams = errors.New("invalid governance params")

// Params holds the tunable governance constants. DefaultParams returns the
// values the engine was calibrated with.
type Params struct {
	// DriftThreshold is the drift above which reinforcement runs.
	DriftThreshold float64

	// ViolationPenalty is added to drift per logged violation.
	ViolationPenalty float64

	// ReaffirmationRelief is subtracted from drift per purpose reaffirmation.
	ReaffirmationRelief float64

	// InvocationRelief is subtracted from drift per rule invocation.
	InvocationRelief float64

	// ReinforcementRelief is subtracted from drift per reinforcement pass.
	ReinforcementRelief float64

	// ConsecutiveViolationLimit triggers reinforcement once reached.
	ConsecutiveViolationLimit int

	// HistorySize bounds the finalized response history.
	HistorySize int

	// StreamingMinLength gates streaming checks on partial output.
	StreamingMinLength int

	// IntegrityCheckInterval and PersistInterval are cycle periods.
	IntegrityCheckInterval int
	PersistInterval        int

	// MinRuleCount and MinMemoryComponents are integrity floors.
	MinRuleCount        int
	MinMemoryComponents int

	// Repetition detector settings.
	SimilarityThreshold    float64
	RepetitionMinLength    int
	RepetitionPrefixLength int

	// MemoryLogLimit bounds the memory kernel event log.
	MemoryLogLimit int

	// TokenLimit is the memory kernel token budget.
	TokenLimit int
}

// DefaultParams returns the standard governance tunables.
func DefaultParams() Params {
	return Params{
		DriftThreshold:            0.4,
		ViolationPenalty:          0.1,
		ReaffirmationRelief:       0.05,
		InvocationRelief:          0.02,
		ReinforcementRelief:       0.3,
		ConsecutiveViolationLimit: 3,
		HistorySize:               5,
		StreamingMinLength:        50,
		IntegrityCheckInterval:    5,
		PersistInterval:           10,
		MinRuleCount:              20,
		MinMemoryComponents:       5,
		SimilarityThreshold:       0.90,
		RepetitionMinLength:       20,
		RepetitionPrefixLength:    50,
		MemoryLogLimit:            256,
		TokenLimit:                32768,
	}
}

// Validate checks that every tunable is in range.
func (p Params) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(p.DriftThreshold > 0 && p.DriftThreshold <= 1, "drift threshold must be in (0, 1]")
	check(p.ViolationPenalty >= 0 && p.ViolationPenalty <= 1, "violation penalty must be in [0, 1]")
	check(p.ReaffirmationRelief >= 0 && p.ReaffirmationRelief <= 1, "reaffirmation relief must be in [0, 1]")
	check(p.InvocationRelief >= 0 && p.InvocationRelief <= 1, "invocation relief must be in [0, 1]")
	check(p.ReinforcementRelief >= 0 && p.ReinforcementRelief <= 1, "reinforcement relief must be in [0, 1]")
	check(p.ConsecutiveViolationLimit > 0, "consecutive violation limit must be positive")
	check(p.HistorySize > 0, "history size must be positive")
	check(p.StreamingMinLength >= 0, "streaming min length must not be negative")
	check(p.IntegrityCheckInterval > 0, "integrity check interval must be positive")
	check(p.PersistInterval > 0, "persist interval must be positive")
	check(p.MinRuleCount >= 0, "min rule count must not be negative")
	check(p.MinMemoryComponents >= 0, "min memory components must not be negative")
	check(p.SimilarityThreshold > 0 && p.SimilarityThreshold <= 1, "similarity threshold must be in (0, 1]")
	check(p.RepetitionMinLength >= 0, "repetition min length must not be negative")
	check(p.RepetitionPrefixLength > 0, "repetition prefix length must be positive")
	check(p.MemoryLogLimit > 0, "memory log limit must be positive")
	check(p.TokenLimit > 0, "token limit must be positive")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidParams, problems)
	}
	return nil
}

package detect

import (
	"strings"

	"mercator-hq/governor/pkg/governance/similarity"
)

// Default repetition thresholds.
const (
	DefaultMinLength           = 20
	DefaultSimilarityThreshold = 0.90
	DefaultPrefixLength        = 50
)

// Reasons reported by the repetition detector.
const (
	ReasonInternalRepetition = "Internal repetition detected"
	ReasonMirrorsHistory     = "Response too similar to previous interaction"
)

// Finding describes why an input was flagged as repetitive.
type Finding struct {
	Reason string

	// Similarity is the score that crossed the threshold. Exact is set
	// when the input is a verbatim repeat.
	Similarity float64
	Exact      bool
}

// Repetition flags responses that duplicate themselves or mirror recent
// responses. The zero value is not usable; use NewRepetition.
type Repetition struct {
	// MinLength exempts shorter inputs from fuzzy and self-duplication
	// checks. Verbatim repeats of a recent response are flagged at any
	// length.
	MinLength int

	// Threshold is the similarity at or above which a history entry counts
	// as mirrored.
	Threshold float64

	// PrefixLength bounds the first-half prefix searched for in the second
	// half during the self-duplication check.
	PrefixLength int
}

// NewRepetition returns a detector with the default thresholds.
func NewRepetition() Repetition {
	return Repetition{
		MinLength:    DefaultMinLength,
		Threshold:    DefaultSimilarityThreshold,
		PrefixLength: DefaultPrefixLength,
	}
}

// Check tests input against itself and against history, most recent last.
func (r Repetition) Check(input string, history []string) (Finding, bool) {
	for _, past := range history {
		if input == past {
			return Finding{Reason: ReasonMirrorsHistory, Similarity: 1.0, Exact: true}, true
		}
	}

	if len(input) < r.MinLength {
		return Finding{}, false
	}

	half := len(input) / 2
	if half > r.MinLength {
		prefix := input[:min(r.PrefixLength, half)]
		if strings.Contains(input[half:], prefix) {
			return Finding{Reason: ReasonInternalRepetition, Similarity: 1.0, Exact: true}, true
		}
	}

	for _, past := range history {
		if len(past) < r.MinLength {
			continue
		}
		// Distance is at least the length difference, so the length ratio
		// bounds similarity from above.
		shorter, longer := min(len(input), len(past)), max(len(input), len(past))
		if float64(shorter)/float64(longer) < r.Threshold {
			continue
		}
		if sim := similarity.Similarity(input, past); sim >= r.Threshold {
			return Finding{Reason: ReasonMirrorsHistory, Similarity: sim}, true
		}
	}
	return Finding{}, false
}

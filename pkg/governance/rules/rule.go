package rules

import "fmt"

// Kind selects a compiled-in predicate for a rule hook. Rules carry a Kind
// rather than a function so they stay plain data: the engine that owns the
// session state decides what each Kind does with that state.
type Kind int

const (
	// KindNone means the rule has no predicate for the hook.
	KindNone Kind = iota

	// KindAdversarial flags text matching a known prompt-injection pattern.
	KindAdversarial

	// KindRepetition flags text that repeats itself or mirrors recent responses.
	KindRepetition
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAdversarial:
		return "adversarial"
	case KindRepetition:
		return "repetition"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rule is a named governance principle with optional finalize and streaming
// predicates.
type Rule struct {
	// ID is unique within a registry. Built-in rules use 1..28.
	ID int

	// Name is the short human-readable title.
	Name string

	// Description is the full statement of the principle. Descriptions feed
	// the integrity fingerprint, so editing one changes the fingerprint.
	Description string

	// Category groups related rules ("Security", "Reasoning", ...).
	Category string

	// Finalize is the predicate run against complete responses.
	Finalize Kind

	// Streaming is the predicate run against partial responses.
	Streaming Kind
}

// HasFinalize reports whether the rule checks complete responses.
func (r Rule) HasFinalize() bool {
	return r.Finalize != KindNone
}

// HasStreaming reports whether the rule checks partial responses.
func (r Rule) HasStreaming() bool {
	return r.Streaming != KindNone
}

// Summary is the persisted form of a rule. Predicates are not serialized;
// only whether the rule had them.
type Summary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	HasFinalize  bool   `json:"has_finalize_response"`
	HasStreaming bool   `json:"has_streaming_check"`
}

// Summarize converts a rule to its persisted form.
func (r Rule) Summarize() Summary {
	return Summary{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		HasFinalize:  r.HasFinalize(),
		HasStreaming: r.HasStreaming(),
	}
}

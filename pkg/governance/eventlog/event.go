package eventlog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Type names a governance event.
type Type string

// Event types emitted by the governance engine.
const (
	TypeInitialization         Type = "INITIALIZATION"
	TypeIntegrityFailure       Type = "INTEGRITY_FAILURE"
	TypeIntegrityCheck         Type = "INTEGRITY_CHECK"
	TypeIntegrityRepair        Type = "INTEGRITY_REPAIR"
	TypeIntegrityVerified      Type = "INTEGRITY_VERIFIED"
	TypeStateRestored          Type = "STATE_RESTORED"
	TypePurposeReaffirmation   Type = "PURPOSE_REAFFIRMATION"
	TypeRuleViolation          Type = "RULE_VIOLATION"
	TypeRuleInvocation         Type = "RULE_INVOCATION"
	TypeReinforcementCycle     Type = "REINFORCEMENT_CYCLE"
	TypeReinforcementCompleted Type = "REINFORCEMENT_COMPLETED"
	TypeAdversarialTest        Type = "ADVERSARIAL_TEST"
	TypeResponseBlocked        Type = "RESPONSE_BLOCKED"
	TypeCommandExecution       Type = "COMMAND_EXECUTION"
)

// Event is one line of the governance audit trail.
type Event struct {
	ID          string    `json:"id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id,omitempty"`
	Cycle       int       `json:"cycle"`
	Type        Type      `json:"type"`
	Description string    `json:"description"`
	DriftScore  float64   `json:"drift_score"`
}

// Filter selects events for Query and Count. Zero fields match everything.
type Filter struct {
	SessionID string
	Type      Type
	Since     time.Time
	Until     time.Time

	// Limit caps the number of events returned by Query; 0 means no cap.
	Limit int
}

// Matches reports whether e satisfies the filter, ignoring Limit.
func (f Filter) Matches(e Event) bool {
	if f.SessionID != "" && e.SessionID != f.SessionID {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !e.Timestamp.Before(f.Until) {
		return false
	}
	return true
}

// Sink receives governance events. Appends are best effort from the
// engine's point of view: a failed append is reported, never retried.
type Sink interface {
	Append(ctx context.Context, e Event) error
	Close() error
}

// Store is a Sink that can also be queried and pruned.
type Store interface {
	Sink
	Query(ctx context.Context, f Filter) ([]Event, error)
	Count(ctx context.Context, f Filter) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ErrClosed is returned when appending to a closed sink.
var ErrClosed = errors.New("event sink closed")

// SinkError reports a failed sink operation.
type SinkError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("event sink error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *SinkError) Unwrap() error {
	return e.Cause
}

// NewSinkError creates a SinkError.
func NewSinkError(backend, operation string, cause error) *SinkError {
	return &SinkError{Backend: backend, Operation: operation, Cause: cause}
}

// NopSink discards every event.
type NopSink struct{}

// Append discards e.
func (NopSink) Append(context.Context, Event) error { return nil }

// Close does nothing.
func (NopSink) Close() error { return nil }

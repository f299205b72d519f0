package hooks

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for operations on unknown sessions.
var ErrSessionNotFound = errors.New("session not found")

// Factory builds the members of a new session's composite.
type Factory func(sessionID string) ([]Hook, error)

// SessionOption configures Sessions.
type SessionOption func(*Sessions)

// WithActiveCallback registers fn to be called with the session count
// whenever a session is created or closed.
func WithActiveCallback(fn func(active int)) SessionOption {
	return func(s *Sessions) { s.onChange = fn }
}

// Sessions holds one composite per session ID.
type Sessions struct {
	mu       sync.Mutex
	factory  Factory
	sessions map[string]*Composite
	onChange func(int)
	logger   *slog.Logger
}

// NewSessions creates a session manager that builds composites with factory.
func NewSessions(factory Factory, opts ...SessionOption) *Sessions {
	s := &Sessions{
		factory:  factory,
		sessions: make(map[string]*Composite),
		onChange: func(int) {},
		logger:   slog.Default().With("component", "hooks.sessions"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the composite for id, creating it on first use. An
// empty id creates an anonymous session with a random UUID.
func (s *Sessions) GetOrCreate(id string) (string, *Composite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if c, ok := s.sessions[id]; ok {
		return id, c, nil
	}

	members, err := s.factory(id)
	if err != nil {
		return "", nil, fmt.Errorf("create session %s: %w", id, err)
	}
	c := NewComposite(members...)
	s.sessions[id] = c
	s.logger.Info("session created", "session_id", id, "hook", c.ID())
	s.onChange(len(s.sessions))
	return id, c, nil
}

// Lookup returns the composite for an existing session.
func (s *Sessions) Lookup(id string) (*Composite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	return c, ok
}

// Close removes a session and closes its members.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	c, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		s.onChange(len(s.sessions))
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.logger.Info("session closed", "session_id", id)
	return c.Close()
}

// CloseAll closes every session.
func (s *Sessions) CloseAll() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Composite)
	s.onChange(0)
	s.mu.Unlock()

	var errs []error
	for id, c := range sessions {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// IDs returns the active session IDs in sorted order.
func (s *Sessions) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of active sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

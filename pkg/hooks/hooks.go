// Package hooks composes policy engines behind one capability interface and
// manages one composite per session.
//
// A Composite fans cycle starts and commands out to every member, chains
// Finalize through members in order, and returns the first streaming
// warning. Model output can carry command envelopes of the form
// {"hook_command": "...", "params": "..."}; HandleText finds and executes
// them.
package hooks

import (
	"errors"
	"io"
	"strings"
)

// Hook is a policy engine driven by the host inference loop.
type Hook interface {
	ID() string
	OnCycleStart()
	Finalize(text string) string
	StreamingCheck(partial string) (string, bool)
	HandleCommand(command, params string) string
	InjectionPrompt() string
}

// Aligner is implemented by hooks that score output against governance.
type Aligner interface {
	Alignment(token string) float64
}

// Composite dispatches to an ordered list of hooks.
type Composite struct {
	hooks []Hook
}

// NewComposite returns a composite over hooks in the given order.
func NewComposite(hooks ...Hook) *Composite {
	return &Composite{hooks: append([]Hook(nil), hooks...)}
}

// Hooks returns the members in dispatch order.
func (c *Composite) Hooks() []Hook {
	return append([]Hook(nil), c.hooks...)
}

// ID returns "composite:[a,b,...]" built from member IDs.
func (c *Composite) ID() string {
	ids := make([]string, len(c.hooks))
	for i, h := range c.hooks {
		ids[i] = h.ID()
	}
	return "composite:[" + strings.Join(ids, ",") + "]"
}

// OnCycleStart notifies every member.
func (c *Composite) OnCycleStart() {
	for _, h := range c.hooks {
		h.OnCycleStart()
	}
}

// Finalize pipes text through every member; each sees the previous output.
func (c *Composite) Finalize(text string) string {
	for _, h := range c.hooks {
		text = h.Finalize(text)
	}
	return text
}

// StreamingCheck returns the first warning raised by any member.
func (c *Composite) StreamingCheck(partial string) (string, bool) {
	for _, h := range c.hooks {
		if warning, ok := h.StreamingCheck(partial); ok {
			return warning, true
		}
	}
	return "", false
}

// Alignment returns the lowest score reported by members implementing
// Aligner. ok is false when no member scores alignment.
func (c *Composite) Alignment(token string) (score float64, ok bool) {
	for _, h := range c.hooks {
		a, isAligner := h.(Aligner)
		if !isAligner {
			continue
		}
		s := a.Alignment(token)
		if !ok || s < score {
			score = s
		}
		ok = true
	}
	return score, ok
}

// HandleCommand sends the command to every member and joins the non-empty
// replies with newlines.
func (c *Composite) HandleCommand(command, params string) string {
	var replies []string
	for _, h := range c.hooks {
		if reply := h.HandleCommand(command, params); reply != "" {
			replies = append(replies, reply)
		}
	}
	return strings.Join(replies, "\n")
}

// InjectionPrompt concatenates the non-empty member prompts.
func (c *Composite) InjectionPrompt() string {
	var sb strings.Builder
	for _, h := range c.hooks {
		if part := h.InjectionPrompt(); part != "" {
			sb.WriteString(part)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Close closes every member that implements io.Closer.
func (c *Composite) Close() error {
	var errs []error
	for _, h := range c.hooks {
		if closer, ok := h.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

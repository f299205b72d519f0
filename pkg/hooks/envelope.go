package hooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ErrNoCommand is returned when an envelope has no hook_command.
var ErrNoCommand = errors.New("envelope has no hook_command")

// Envelope is a command embedded in model output or sent by the host.
type Envelope struct {
	Command string `json:"hook_command"`
	Params  string `json:"params,omitempty"`
}

type rawEnvelope struct {
	Command *string         `json:"hook_command"`
	Params  json.RawMessage `json:"params"`
}

// jsonBlock matches a JSON object with at most one level of nesting.
var jsonBlock = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

const commandKey = "hook_command"

// ParseEnvelope decodes one envelope. Non-string params (numbers, booleans)
// are accepted and kept in their JSON text form.
func ParseEnvelope(data []byte) (Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope{}, fmt.Errorf("invalid command envelope: %w", err)
	}
	if raw.Command == nil || *raw.Command == "" {
		return Envelope{}, ErrNoCommand
	}

	env := Envelope{Command: *raw.Command}
	if len(raw.Params) > 0 && string(raw.Params) != "null" {
		var s string
		if err := json.Unmarshal(raw.Params, &s); err == nil {
			env.Params = s
		} else {
			env.Params = string(raw.Params)
		}
	}
	return env, nil
}

// ExtractEnvelopes returns every well-formed envelope embedded in text, in
// order of appearance.
func ExtractEnvelopes(text string) []Envelope {
	if !strings.Contains(text, commandKey) {
		return nil
	}

	var out []Envelope
	for _, block := range jsonBlock.FindAllString(text, -1) {
		if !strings.Contains(block, commandKey) {
			continue
		}
		if env, err := ParseEnvelope([]byte(block)); err == nil {
			out = append(out, env)
		}
	}
	return out
}

// HandleText executes the first envelope in text that produces a reply.
// It returns "" when text carries no command, and a descriptive error reply
// when it mentions hook_command but no envelope parses.
func HandleText(h Hook, text string) string {
	if !strings.Contains(text, commandKey) || !strings.Contains(text, "{") {
		return ""
	}

	logger := slog.Default().With("component", "hooks")
	var lastErr error
	for _, block := range jsonBlock.FindAllString(text, -1) {
		if !strings.Contains(block, commandKey) {
			continue
		}
		env, err := ParseEnvelope([]byte(block))
		if err != nil {
			logger.Debug("skipping malformed command envelope", "error", err)
			lastErr = err
			continue
		}
		if reply := h.HandleCommand(env.Command, env.Params); reply != "" {
			return reply
		}
	}

	if lastErr != nil {
		return "Error executing governance command: " + lastErr.Error()
	}
	return ""
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"mercator-hq/governor/pkg/governance/engine"
	"mercator-hq/governor/pkg/hooks"
	"mercator-hq/governor/pkg/telemetry/tracing"
)

// SessionResponse identifies a session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	HookID    string `json:"hook_id,omitempty"`
}

// SessionListResponse lists the live sessions.
type SessionListResponse struct {
	Sessions []string `json:"sessions"`
}

// FinalizeRequest carries a complete model response.
type FinalizeRequest struct {
	Text string `json:"text"`
}

// FinalizeResponse is the governed response. When the governed text embeds
// a hook_command envelope, the command reply is appended to Text after a
// newline and also returned in CommandReply.
type FinalizeResponse struct {
	SessionID    string `json:"session_id"`
	Text         string `json:"text"`
	CommandReply string `json:"command_reply,omitempty"`
}

// StreamCheckRequest carries the partial output seen so far.
type StreamCheckRequest struct {
	Partial string `json:"partial"`
}

// StreamCheckResponse reports a warning for partial output. Alignment is the
// governance alignment score of the partial, omitted when no hook scores it.
type StreamCheckResponse struct {
	SessionID string   `json:"session_id"`
	Warning   string   `json:"warning,omitempty"`
	Flagged   bool     `json:"flagged"`
	Alignment *float64 `json:"alignment,omitempty"`
}

// CommandRequest invokes a governance command directly.
type CommandRequest struct {
	Command string `json:"command"`
	Params  string `json:"params"`
}

// CommandResponse is the command reply text.
type CommandResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// PromptResponse is the text to inject ahead of the model's context.
type PromptResponse struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

// CommandListResponse lists the governance commands.
type CommandListResponse struct {
	Commands []string `json:"commands"`
}

// setupRoutes registers the routes and wraps the mux in the middleware
// chain. Recovery is outermost.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "POST /v1/sessions", s.handleCreateSession)
	s.route(mux, "GET /v1/sessions", s.handleListSessions)
	s.route(mux, "DELETE /v1/sessions/{id}", s.handleDeleteSession)
	s.route(mux, "POST /v1/sessions/{id}/cycle", s.handleCycle)
	s.route(mux, "POST /v1/sessions/{id}/finalize", s.handleFinalize)
	s.route(mux, "POST /v1/sessions/{id}/stream-check", s.handleStreamCheck)
	s.route(mux, "POST /v1/sessions/{id}/command", s.handleCommand)
	s.route(mux, "GET /v1/sessions/{id}/prompt", s.handlePrompt)
	s.route(mux, "GET /v1/commands", s.handleListCommands)

	healthCfg := s.config.Telemetry.Health
	checker := s.telemetry.Health()
	mux.Handle(healthCfg.LivenessPath, checker.LivenessHandler())
	mux.Handle(healthCfg.ReadinessPath, checker.ReadinessHandler())

	if metricsCfg := s.config.Telemetry.Metrics; metricsCfg.Enabled {
		mux.Handle("GET "+metricsCfg.Path, s.telemetry.Metrics().Handler())
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(handler)
	return handler
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

// session resolves the {id} path value, creating the session on first use.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *hooks.Composite, bool) {
	id, composite, err := s.sessions.GetOrCreate(r.PathValue("id"))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, ErrorTypeServerError, CodeSessionFailed,
			"failed to initialize session")
		return "", nil, false
	}
	return id, composite, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, composite, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: id, HookID: composite.ID()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SessionListResponse{Sessions: s.sessions.IDs()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.sessions.Close(id); err != nil {
		if errors.Is(err, hooks.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, ErrorTypeNotFound, CodeSessionNotFound,
				"session not found: "+id)
			return
		}
		// The session is gone even when a member failed to close.
		s.logger.WarnContext(r.Context(), "session closed with errors", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	id, composite, ok := s.session(w, r)
	if !ok {
		return
	}
	composite.OnCycleStart()
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id, HookID: composite.ID()})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	var req FinalizeRequest
	if !decodeBody(w, r, s.config.Server.MaxBodyBytes, &req) {
		return
	}
	id, composite, ok := s.session(w, r)
	if !ok {
		return
	}

	out := composite.Finalize(req.Text)
	reply := hooks.HandleText(composite, out)
	if reply != "" {
		out += "\n" + reply
	}

	span := tracing.SpanFromContext(r.Context())
	tracing.SetFinalizeAttributes(span, req.Text, out)

	writeJSON(w, http.StatusOK, FinalizeResponse{SessionID: id, Text: out, CommandReply: reply})
}

func (s *Server) handleStreamCheck(w http.ResponseWriter, r *http.Request) {
	var req StreamCheckRequest
	if !decodeBody(w, r, s.config.Server.MaxBodyBytes, &req) {
		return
	}
	id, composite, ok := s.session(w, r)
	if !ok {
		return
	}

	resp := StreamCheckResponse{SessionID: id}
	resp.Warning, resp.Flagged = composite.StreamingCheck(req.Partial)
	if resp.Flagged {
		tracing.AddEvent(tracing.SpanFromContext(r.Context()), "streaming.warning")
	}
	if score, ok := composite.Alignment(req.Partial); ok {
		resp.Alignment = &score
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if !decodeBody(w, r, s.config.Server.MaxBodyBytes, &req) {
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeMissingField,
			"command is required")
		return
	}
	id, composite, ok := s.session(w, r)
	if !ok {
		return
	}

	reply := composite.HandleCommand(req.Command, req.Params)
	tracing.SetCommandAttributes(tracing.SpanFromContext(r.Context()), req.Command, len(reply))
	writeJSON(w, http.StatusOK, CommandResponse{SessionID: id, Reply: reply})
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	id, composite, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PromptResponse{SessionID: id, Prompt: composite.InjectionPrompt()})
}

func (s *Server) handleListCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CommandListResponse{Commands: engine.Commands()})
}

// Package server exposes the governance hooks over HTTP.
//
// An agent runtime drives one session per conversation through these routes:
//
//	POST   /v1/sessions                       create a session with a random ID
//	GET    /v1/sessions                       list live sessions
//	DELETE /v1/sessions/{id}                  close a session
//	POST   /v1/sessions/{id}/cycle            start an inference cycle
//	POST   /v1/sessions/{id}/finalize         govern a complete response
//	POST   /v1/sessions/{id}/stream-check     check partial output
//	POST   /v1/sessions/{id}/command          run a governance command
//	GET    /v1/sessions/{id}/prompt           fetch the injection prompt
//	GET    /v1/commands                       list governance commands
//
// Session routes create the session on first use. Finalize also executes
// the first hook_command envelope embedded in the governed text and appends
// its reply.
//
// The liveness, readiness and metrics endpoints are mounted at the paths in
// config.TelemetryConfig. Every hook route runs inside a server span named
// after its pattern and is counted by route, method and status.
//
// Start serves until its context is cancelled:
//
//	srv := server.New(cfg, sessions, tel)
//	if err := srv.Start(ctx); err != nil {
//		return err
//	}
package server

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check made by /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/state", s.handleState)
		r.Get("/system", s.handleSystem)
		r.Post("/control", s.handleControl)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return r
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

// handleHealth returns the server health status. Failing optional
// dependencies mark the service degraded but never fail the request.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
	}

	if len(s.checks) > 0 {
		resp.Components = make(map[string]string, len(s.checks))
		names := make([]string, 0, len(s.checks))
		for name := range s.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := s.checks[name].HealthCheck(ctx)
			cancel()

			if err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Components[name] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleState returns the pipeline snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.state.Status(r.Context())
	if err != nil {
		s.logger.Warn("pipeline state unavailable", "error", err)
		writeUnavailable(w, "pipeline state unavailable")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ControlRequest is the body of POST /api/v1/control.
type ControlRequest struct {
	Command string `json:"command"`
}

// handleControl queues a "+" or "-" blink period command.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if s.commands == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "remote control is disabled")
		return
	}

	var req ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	cmd := strings.TrimSpace(req.Command)
	if cmd != "+" && cmd != "-" {
		writeBadRequest(w, `command must be "+" or "-"`)
		return
	}

	if !s.commands.Push(cmd) {
		writeUnavailable(w, "control queue full")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

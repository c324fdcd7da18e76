package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/game"
	"github.com/comalice/riskbox/internal/logging"
	"github.com/comalice/riskbox/internal/production"
)

// Server exposes a running game System over HTTP.
type Server struct {
	Sys      *core.System
	Machines *game.Machines
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	visualizer production.DefaultVisualizer
}

// EventRequest is the body of POST /events.
type EventRequest struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler. A nil gatherer disables /metrics.
func NewHandler(sys *core.System, machines *game.Machines, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{Sys: sys, Machines: machines, Gatherer: gatherer, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.Health)
	r.Get("/snapshot", s.GetSnapshot)
	r.Post("/events", s.PostEvent)
	r.Get("/graph/{machine}", s.GetGraph)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSnapshot handles GET /snapshot. The optional actor query parameter
// selects a spawned actor by id, e.g. "game/box".
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("actor")
	if id == "" {
		s.writeJSON(w, http.StatusOK, s.Sys.Snapshot())
		return
	}
	snap, err := s.Sys.SnapshotOf(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// PostEvent handles POST /events and answers with the resulting root snapshot.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var body EventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	evt, err := game.DecodeEvent(body.Type, body.Data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Sys.Send(r.Context(), evt); err != nil {
		s.Logger.Warn("event failed", "event", evt.Type, "error", err)
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Sys.Snapshot())
}

// GetGraph handles GET /graph/{machine}?format=dot|mermaid. DOT output
// highlights the state of a running actor of that machine.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	machine := chi.URLParam(r, "machine")
	def, ok := s.Machines.ByID(machine)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown machine %q", machine))
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		fmt.Fprint(w, s.visualizer.ExportDOT(def, s.activeState(machine)))
	case "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, s.visualizer.ExportMermaid(def))
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", format))
	}
}

// activeState returns the state value of the first live actor running machine.
func (s *Server) activeState(machine string) string {
	for _, id := range s.Sys.Actors() {
		snap, err := s.Sys.SnapshotOf(id)
		if err == nil && snap.Machine == machine {
			return snap.Value
		}
	}
	return ""
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrTransitionLoop), errors.Is(err, core.ErrCascadeDepth):
		return http.StatusConflict
	}
	var actionErr *core.ActionError
	if errors.As(err, &actionErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

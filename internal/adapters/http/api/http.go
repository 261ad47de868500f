// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	service "github.com/okian/cardwise/internal/app"
	"github.com/okian/cardwise/internal/domain/validation"
	"github.com/okian/cardwise/internal/domain/wizard"
)

const maxRequestBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StartSession(ctx context.Context, o service.StartOptions) (wizard.View, error)
	Session(ctx context.Context, id string) (wizard.View, error)
	SetField(ctx context.Context, id, path string, raw json.RawMessage) (wizard.View, error)
	SetFields(ctx context.Context, id string, values map[string]json.RawMessage) (wizard.View, error)
	Advance(ctx context.Context, id string) (wizard.Transition, wizard.View, error)
	Retreat(ctx context.Context, id string) (wizard.View, error)
	Reset(ctx context.Context, id string) (wizard.View, error)
	Discard(ctx context.Context, id string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	stepsHandler    *StepsHandler
	previewHandler  *PreviewHandler
}

// NewServer creates a new API server with all handlers. topN is the number
// of spending categories previews highlight.
func NewServer(deps Dependencies, statsProvider StatsProvider, topN int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps),
		stepsHandler:    NewStepsHandler(),
		previewHandler:  NewPreviewHandler(topN),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/v1/steps", MetricsMiddleware(s.stepsHandler.HandleList, "steps"))
	mux.HandleFunc("GET /api/v1/steps/{n}", MetricsMiddleware(s.stepsHandler.HandleGet, "steps"))
	mux.HandleFunc("POST /api/v1/validate/{n}", MetricsMiddleware(s.previewHandler.HandleValidate, "validate"))
	mux.HandleFunc("POST /api/v1/preview", MetricsMiddleware(s.previewHandler.HandlePreview, "preview"))

	h := s.sessionsHandler
	mux.HandleFunc("POST /api/v1/sessions", MetricsMiddleware(h.HandleCreate, "sessions"))
	mux.HandleFunc("GET /api/v1/sessions/{id}", MetricsMiddleware(h.HandleGet, "session"))
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", MetricsMiddleware(h.HandleDelete, "session"))
	mux.HandleFunc("PATCH /api/v1/sessions/{id}/fields", MetricsMiddleware(h.HandleSetFields, "session_fields"))
	mux.HandleFunc("POST /api/v1/sessions/{id}/advance", MetricsMiddleware(h.HandleAdvance, "session_advance"))
	mux.HandleFunc("POST /api/v1/sessions/{id}/retreat", MetricsMiddleware(h.HandleRetreat, "session_retreat"))
	mux.HandleFunc("POST /api/v1/sessions/{id}/reset", MetricsMiddleware(h.HandleReset, "session_reset"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// transitionResponse reports the outcome of an advance next to the session.
type transitionResponse struct {
	From       int                   `json:"from"`
	To         int                   `json:"to"`
	Violations validation.Violations `json:"violations"`
	Submitted  bool                  `json:"submitted"`
	Session    wizard.View           `json:"session"`
	Error      *errorResponse        `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, op string, err error) {
	err = classify(op, err)
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// decodeBody reads a JSON request body into v. An empty body leaves v as is
// when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: empty body", ErrBadRequest)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

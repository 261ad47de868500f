package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/cardwise/internal/app"
	"github.com/okian/cardwise/internal/domain/wizard"
)

// SessionsHandler serves the wizard session resource.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type createRequest struct {
	Sample bool `json:"sample"`
}

// HandleCreate handles POST /api/v1/sessions. The body is optional.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req createRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.StartSession(r.Context(), service.StartOptions{Sample: req.Sample})
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+v.ID)
	writeJSON(w, http.StatusCreated, v)
}

// HandleGet handles GET /api/v1/sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, "api.get_session", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleDelete handles DELETE /api/v1/sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Discard(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, "api.delete_session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fieldsRequest is the body of PATCH /fields. It takes one of three shapes:
// {"path": p, "value": v}, {"fields": {p: v, ...}} or the bare {p: v, ...}
// map. Field paths are always dotted, so the shapes cannot collide.
type fieldsRequest struct {
	Path   string
	Value  json.RawMessage
	Fields map[string]json.RawMessage
}

func (f *fieldsRequest) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if p, ok := raw["path"]; ok {
		if len(raw) != 2 || raw["value"] == nil {
			return errors.New(`a single field update needs exactly "path" and "value"`)
		}
		f.Value = raw["value"]
		return json.Unmarshal(p, &f.Path)
	}
	if fs, ok := raw["fields"]; ok {
		if len(raw) != 1 {
			return errors.New(`"fields" cannot be mixed with other keys`)
		}
		return json.Unmarshal(fs, &f.Fields)
	}
	f.Fields = raw
	return nil
}

// HandleSetFields handles PATCH /api/v1/sessions/{id}/fields. A multi-field
// body is applied atomically.
func (h *SessionsHandler) HandleSetFields(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_fields"
	var req fieldsRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var (
		v   wizard.View
		err error
	)
	switch {
	case req.Path != "":
		v, err = h.deps.SetField(r.Context(), r.PathValue("id"), req.Path, req.Value)
	case len(req.Fields) > 0:
		v, err = h.deps.SetFields(r.Context(), r.PathValue("id"), req.Fields)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("no fields given")))
		return
	}
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleAdvance handles POST /api/v1/sessions/{id}/advance.
// A step that fails validation answers 422 with the violations; a failed
// submission answers 502 with the session left retryable.
func (h *SessionsHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	const op = "api.advance"
	tr, v, err := h.deps.Advance(r.Context(), r.PathValue("id"))
	if err != nil && v.ID == "" {
		writeFailure(w, op, err)
		return
	}

	resp := transitionResponse{
		From:       tr.From,
		To:         tr.To,
		Violations: v.Violations,
		Submitted:  tr.Submit && err == nil,
		Session:    v,
	}
	switch {
	case err != nil:
		kerr := classify(op, err)
		status, code := statusFor(kerr)
		resp.Error = &errorResponse{Code: code, Message: kerr.Error()}
		writeJSON(w, status, resp)
	case len(tr.Violations) > 0:
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleRetreat handles POST /api/v1/sessions/{id}/retreat.
func (h *SessionsHandler) HandleRetreat(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Retreat(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, "api.retreat", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleReset handles POST /api/v1/sessions/{id}/reset.
func (h *SessionsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, "api.reset", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

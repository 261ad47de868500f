package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/cardwise/internal/domain/profile"
)

// StepsHandler describes the form so clients can render it.
type StepsHandler struct{}

// NewStepsHandler creates a new steps handler.
func NewStepsHandler() *StepsHandler {
	return &StepsHandler{}
}

// HandleList handles GET /api/v1/steps.
func (h *StepsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, profile.Steps())
}

// HandleGet handles GET /api/v1/steps/{n}.
func (h *StepsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_step"
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	info, ok := profile.StepByNumber(n)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, errors.New("no such step")))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

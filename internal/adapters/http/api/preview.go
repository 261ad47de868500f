package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/internal/domain/validation"
)

// PreviewHandler runs the formatter and validator on a posted draft without
// creating a session.
type PreviewHandler struct {
	topN int
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(topN int) *PreviewHandler {
	if topN <= 0 {
		topN = payload.DefaultTopN
	}
	return &PreviewHandler{topN: topN}
}

type previewResponse struct {
	Payload        payload.Payload `json:"payload"`
	LifestyleScore int             `json:"lifestyle_score"`
}

type validateResponse struct {
	Step       int                   `json:"step"`
	Valid      bool                  `json:"valid"`
	Violations validation.Violations `json:"violations"`
}

// HandlePreview handles POST /api/v1/preview. The optional query parameter
// top overrides the number of highlighted categories.
func (h *PreviewHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "api.preview"
	topN := h.topN
	if q := r.URL.Query().Get("top"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("top must be a positive integer")))
			return
		}
		topN = n
	}

	var d profile.Draft
	if err := decodeBody(w, r, &d, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p := payload.Format(d, payload.WithTopN(topN))
	writeJSON(w, http.StatusOK, previewResponse{Payload: p, LifestyleScore: recommendation.LifestyleScore(p)})
}

// HandleValidate handles POST /api/v1/validate/{n}.
func (h *PreviewHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate"
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 || n > profile.TotalSteps {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, errors.New("no such step")))
		return
	}
	var d profile.Draft
	if err := decodeBody(w, r, &d, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	v := validation.Validate(n, d)
	if v == nil {
		v = validation.Violations{}
	}
	writeJSON(w, http.StatusOK, validateResponse{Step: n, Valid: v.OK(), Violations: v})
}

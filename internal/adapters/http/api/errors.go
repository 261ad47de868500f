package api

import (
	"errors"
	"net/http"

	"github.com/okian/cardwise/internal/adapters/recommender"
	"github.com/okian/cardwise/internal/adapters/repository"
	service "github.com/okian/cardwise/internal/app"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/internal/resilience"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBackpressure = errors.New("backpressure")
	ErrUpstream     = errors.New("upstream failure")
	ErrUnavailable  = errors.New("unavailable")
)

// KindError tags an error with the operation and API kind it maps to.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns a bare error of kind raised by op.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind tags err with kind. The message stays err's.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// classify maps domain errors onto API kinds.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, repository.ErrCapacity):
		return WrapKind(op, ErrBackpressure, err)
	case errors.Is(err, wizard.ErrSubmissionInFlight), errors.Is(err, wizard.ErrSessionDone):
		return WrapKind(op, ErrConflict, err)
	case errors.Is(err, profile.ErrUnknownPath), errors.Is(err, profile.ErrInvalidValue):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, wizard.ErrNoSubmitter), errors.Is(err, service.ErrNotStarted), errors.Is(err, resilience.ErrOpen):
		return WrapKind(op, ErrUnavailable, err)
	case errors.Is(err, recommender.ErrTransport):
		return WrapKind(op, ErrUpstream, err)
	default:
		return err
	}
}

// statusFor returns the HTTP status and error code for err.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway, "submission_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

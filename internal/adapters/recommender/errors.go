package recommender

import (
	"errors"
	"fmt"
)

// Sentinel kinds for submission failures. ErrDecode also matches
// ErrTransport: a malformed success body is shown like any failed call.
var (
	ErrTransport = errors.New("recommendation service unavailable")
	ErrDecode    = errors.New("malformed recommendation response")
)

// SubmissionError describes one failed submission. Message is fit for
// display as is.
type SubmissionError struct {
	Op      string
	Kind    error
	Status  int
	Body    string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

// Unwrap exposes the kind and the underlying cause.
func (e *SubmissionError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Is makes every SubmissionError a transport error.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrTransport
}

func transportError(op string, err error) *SubmissionError {
	return &SubmissionError{
		Op:      op,
		Kind:    ErrTransport,
		Message: fmt.Sprintf("Could not reach the recommendation service: %v", err),
		Err:     err,
	}
}

func statusError(op string, status int, body []byte, msg string) *SubmissionError {
	return &SubmissionError{
		Op:      op,
		Kind:    ErrTransport,
		Status:  status,
		Body:    string(body),
		Message: msg,
	}
}

func decodeError(op string, status int, body []byte, err error) *SubmissionError {
	return &SubmissionError{
		Op:      op,
		Kind:    ErrDecode,
		Status:  status,
		Body:    string(body),
		Message: fmt.Sprintf("Invalid response from the recommendation service: %v", err),
		Err:     err,
	}
}

package wizard

import "errors"

// Sentinel error kinds for wizard state transitions.
var (
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrSessionDone        = errors.New("session already completed")
	ErrNoSubmitter        = errors.New("no submitter configured")
)

package profile

import "errors"

// Sentinel error kinds for field addressing.
var (
	ErrUnknownPath  = errors.New("unknown field path")
	ErrInvalidValue = errors.New("invalid field value")
)

package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound    = errors.New("session not found")
	ErrCapacity    = errors.New("session store is full")
	ErrDuplicateID = errors.New("session id already in use")
)

// Package repository holds live wizard sessions between requests.
package repository

import (
	"context"

	"github.com/okian/cardwise/internal/domain/wizard"
)

// Store keeps sessions addressable by ID.
type Store interface {
	// Put adds a session. Returns ErrCapacity when the store is full and
	// ErrDuplicateID when the ID is taken.
	Put(ctx context.Context, s *wizard.Session) error

	// Get returns the session with id or ErrNotFound.
	Get(ctx context.Context, id string) (*wizard.Session, error)

	// Delete removes the session with id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Count returns the number of sessions held.
	Count(ctx context.Context) int

	// Sweep drops expired sessions and returns how many went.
	Sweep(ctx context.Context) int

	// Close releases background work.
	Close() error
}

var _ Store = (*MemoryStore)(nil)

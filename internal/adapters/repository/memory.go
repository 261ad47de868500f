package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/pkg/metrics"
)

// MemoryStore is an in-process Store with idle expiry.
type MemoryStore struct {
	mu            sync.RWMutex
	byID          map[string]*wizard.Session
	ttl           time.Duration
	maxSessions   int
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its sweeper, which stops when
// ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:          make(map[string]*wizard.Session),
		ttl:           30 * time.Minute,
		sweepInterval: 30 * time.Second,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startSweeper(ctx)
	return s
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, sess *wizard.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[sess.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, sess.ID())
	}
	if s.maxSessions > 0 && len(s.byID) >= s.maxSessions {
		return ErrCapacity
	}
	s.byID[sess.ID()] = sess
	metrics.UpdateSessionsActive(len(s.byID))
	return nil
}

// Get implements Store.Get. Expired sessions are reported as not found even
// before the sweeper removes them.
func (s *MemoryStore) Get(_ context.Context, id string) (*wizard.Session, error) {
	s.mu.RLock()
	sess, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok || s.expired(sess, s.now()) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.byID, id)
	metrics.UpdateSessionsActive(len(s.byID))
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Sweep removes expired sessions and returns how many were dropped.
// Sessions that are mid-submission are kept until their call resolves.
func (s *MemoryStore) Sweep(_ context.Context) int {
	now := s.now()

	s.mu.RLock()
	var stale []string
	for id, sess := range s.byID {
		if s.expired(sess, now) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()
	if len(stale) == 0 {
		return 0
	}

	s.mu.Lock()
	removed := 0
	for _, id := range stale {
		if sess, ok := s.byID[id]; ok && s.expired(sess, now) {
			delete(s.byID, id)
			removed++
		}
	}
	active := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateSessionsActive(active)
	metrics.RecordSessionsExpired(removed)
	return removed
}

func (s *MemoryStore) expired(sess *wizard.Session, now time.Time) bool {
	if sess.State() == wizard.Submitting {
		return false
	}
	return now.Sub(sess.TouchedAt()) > s.ttl
}

package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

type entry struct {
	val     []byte
	expires time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithMaxEntries bounds the cache. When full, Set drops expired entries
// first and then the entry closest to expiry.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

// WithSweepInterval starts a background sweeper removing expired entries.
// Close stops it.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(m *Memory) {
		if d > 0 {
			m.sweepInterval = d
		}
	}
}

// Memory is an in-process Cache.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	now        func() time.Time
	maxEntries int

	sweepInterval time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewMemory returns an empty in-process cache. now may be nil.
func NewMemory(now func() time.Time, opts ...MemoryOption) *Memory {
	if now == nil {
		now = time.Now
	}
	m := &Memory{entries: make(map[string]entry), now: now, stopChan: make(chan struct{})}
	for _, opt := range opts {
		opt(m)
	}
	if m.sweepInterval > 0 {
		m.startSweeper()
	}
	return m
}

func (m *Memory) startSweeper() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Get implements Cache.Get.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if m.expired(e, m.now()) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	return slices.Clone(e.val), nil
}

// Set implements Cache.Set. A non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: slices.Clone(val)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		if m.sweepLocked() == 0 {
			m.evictLocked()
		}
	}
	m.entries[key] = e
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked()
}

func (m *Memory) sweepLocked() int {
	now := m.now()
	n := 0
	for k, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// evictLocked drops the entry closest to expiry. Entries without a ttl go last.
func (m *Memory) evictLocked() {
	var (
		victim string
		soon   time.Time
		found  bool
	)
	for k, e := range m.entries {
		switch {
		case !found:
		case e.expires.IsZero():
			continue
		case !soon.IsZero() && !e.expires.Before(soon):
			continue
		}
		victim, soon, found = k, e.expires, true
	}
	if found {
		delete(m.entries, victim)
	}
}

func (m *Memory) expired(e entry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close stops the sweeper, if any.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()
	return nil
}

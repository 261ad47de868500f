package profile

import (
	"encoding/json"
	"slices"
	"sync"
)

// Store owns the one live draft of a form session. Readers receive
// snapshots; writers swap in a new snapshot. Nothing is validated here.
type Store struct {
	mu    sync.RWMutex
	draft Draft
}

// NewStore returns a store holding d.
func NewStore(d Draft) *Store {
	return &Store{draft: d}
}

// Get returns the current snapshot.
func (s *Store) Get() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Set writes v at f.
func Set[T any](s *Store, f Field[T], v T) {
	s.mu.Lock()
	s.draft = f.With(s.draft, v)
	s.mu.Unlock()
}

// SetRaw writes a JSON encoded value at the dotted path.
func (s *Store) SetRaw(path string, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := WithJSON(s.draft, path, raw)
	if err != nil {
		return err
	}
	s.draft = d
	return nil
}

// SetMany applies several JSON encoded values. Either all apply or none do.
func (s *Store) SetMany(values map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft
	for _, path := range sortedPaths(values) {
		var err error
		if d, err = WithJSON(d, path, values[path]); err != nil {
			return err
		}
	}
	s.draft = d
	return nil
}

// Replace swaps in d wholesale.
func (s *Store) Replace(d Draft) {
	s.mu.Lock()
	s.draft = d
	s.mu.Unlock()
}

// Reset discards the draft and starts blank.
func (s *Store) Reset() {
	s.Replace(New())
}

// sortedPaths orders paths by schema position so errors are reproducible.
func sortedPaths(values map[string]json.RawMessage) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, f := range All() {
		if _, ok := values[f.Path()]; ok {
			out = append(out, f.Path())
			seen[f.Path()] = true
		}
	}
	unknown := make([]string, 0)
	for p := range values {
		if !seen[p] {
			unknown = append(unknown, p)
		}
	}
	slices.Sort(unknown)
	return append(unknown, out...)
}

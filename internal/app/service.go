// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/cardwise/internal/adapters/repository"
	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/pkg/logger"
	"github.com/okian/cardwise/pkg/metrics"
)

// ErrNotStarted is returned by session operations before Start.
var ErrNotStarted = errors.New("service not started")

// StartOptions tune a new session.
type StartOptions struct {
	// Sample pre-fills the draft with demonstration values.
	Sample bool
}

// Service hosts wizard sessions for the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions  repository.Store
	submitter wizard.Submitter

	// Configuration
	topN          int
	sessionTTL    time.Duration
	maxSessions   int
	sweepInterval time.Duration
	now           func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSubmitter sets the strategy sessions submit through.
func WithSubmitter(sub wizard.Submitter) Option {
	return func(s *Service) { s.submitter = sub }
}

// WithTopN sets how many spending categories each payload highlights.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithSessionTTL sets the idle time after which sessions are dropped.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSweepInterval sets how often idle sessions are collected.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore makes the service keep sessions in st instead of building an
// in-memory store on Start. Stop closes it.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.sessions = st
		}
	}
}

// WithClock overrides the time source for sessions and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		topN:          payload.DefaultTopN,
		sessionTTL:    30 * time.Minute,
		maxSessions:   10000,
		sweepInterval: 30 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the session store and its sweeper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.sessions == nil {
		s.sessions = repository.NewMemoryStore(ctx,
			repository.WithTTL(s.sessionTTL),
			repository.WithMaxSessions(s.maxSessions),
			repository.WithSweepInterval(s.sweepInterval),
			repository.WithClock(s.now),
		)
	}

	s.started = true
	s.logger.Info(ctx, "wizard service started",
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("maxSessions", s.maxSessions),
		logger.Int("topN", s.topN),
		logger.Bool("submitter", s.submitter != nil),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.sessions != nil {
		_ = s.sessions.Close()
		s.sessions = nil
	}
	s.started = false
	s.logger.Info(context.Background(), "wizard service stopped")
}

func (s *Service) store() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.sessions, nil
}

func (s *Service) get(ctx context.Context, id string) (*wizard.Session, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	return st.Get(ctx, id)
}

// StartSession creates a new session at step 1.
func (s *Service) StartSession(ctx context.Context, o StartOptions) (wizard.View, error) {
	st, err := s.store()
	if err != nil {
		return wizard.View{}, err
	}

	initial := profile.New()
	if o.Sample {
		initial = profile.Sample()
	}
	sess := wizard.NewSession(s.submitter,
		wizard.WithID(uuid.NewString()),
		wizard.WithDraft(initial),
		wizard.WithTopN(s.topN),
		wizard.WithClock(s.now),
		wizard.WithStepperOptions(wizard.WithTransitionHook(recordTransition)),
	)
	if err := st.Put(ctx, sess); err != nil {
		return wizard.View{}, err
	}
	metrics.RecordSessionStarted()
	s.logger.Debug(ctx, "session started",
		logger.String("session", sess.ID()),
		logger.Bool("sample", o.Sample),
	)
	return sess.View(), nil
}

// Session returns a snapshot of the session with id.
func (s *Service) Session(ctx context.Context, id string) (wizard.View, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}
	return sess.View(), nil
}

// SetFields writes several draft values atomically.
func (s *Service) SetFields(ctx context.Context, id string, values map[string]json.RawMessage) (wizard.View, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}
	if err := sess.SetFields(values); err != nil {
		return wizard.View{}, err
	}
	return sess.View(), nil
}

// SetField writes one draft value.
func (s *Service) SetField(ctx context.Context, id, path string, raw json.RawMessage) (wizard.View, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}
	if err := sess.SetField(path, raw); err != nil {
		return wizard.View{}, err
	}
	return sess.View(), nil
}

// Advance validates the current step and moves on, submitting from the last
// step. A submission failure is returned alongside the updated view.
func (s *Service) Advance(ctx context.Context, id string) (wizard.Transition, wizard.View, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return wizard.Transition{}, wizard.View{}, err
	}

	tr, err := sess.Advance(ctx)
	if len(tr.Violations) > 0 {
		metrics.RecordValidationFailure(tr.From)
		s.logger.Debug(ctx, "step rejected",
			logger.String("session", id),
			logger.Int("step", tr.From),
			logger.Int("violations", len(tr.Violations)),
		)
	}
	if tr.Submit {
		metrics.RecordStepAdvance(tr.From)
		if err != nil {
			s.logger.Warn(ctx, "submission failed",
				logger.String("session", id),
				logger.Error(err),
			)
		} else {
			s.logger.Info(ctx, "recommendations ready", logger.String("session", id))
		}
	}
	return tr, sess.View(), err
}

// Retreat goes back one step.
func (s *Service) Retreat(ctx context.Context, id string) (wizard.View, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}
	if err := sess.Retreat(); err != nil {
		return wizard.View{}, err
	}
	metrics.RecordStepRetreat()
	return sess.View(), nil
}

// Reset clears the session back to a blank step 1.
func (s *Service) Reset(ctx context.Context, id string) (wizard.View, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}
	if err := sess.Reset(); err != nil {
		return wizard.View{}, err
	}
	return sess.View(), nil
}

// Discard drops the session with id.
func (s *Service) Discard(ctx context.Context, id string) error {
	st, err := s.store()
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug(ctx, "session discarded", logger.String("session", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"topN":          s.topN,
		"maxSessions":   s.maxSessions,
		"sessionTTL":    s.sessionTTL.String(),
		"sweepInterval": s.sweepInterval.String(),
		"submitter":     fmt.Sprintf("%T", s.submitter),
	}
	if s.started {
		active := s.sessions.Count(context.Background())
		stats["activeSessions"] = active
		metrics.UpdateSessionsActive(active)
	}
	return stats
}

// recordTransition counts forward moves between steps.
func recordTransition(from, to int) {
	if to > from {
		metrics.RecordStepAdvance(from)
	}
}

package wizard

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/internal/domain/validation"
)

// Submitter performs exactly one submission attempt per call.
type Submitter interface {
	Submit(ctx context.Context, p payload.Payload) (recommendation.Results, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, p payload.Payload) (recommendation.Results, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, p payload.Payload) (recommendation.Results, error) {
	return f(ctx, p)
}

// Session owns one draft and its stepper for the life of a form.
type Session struct {
	id        string
	submitter Submitter
	topN      int
	now       func() time.Time
	stepOpts  []StepperOption
	initial   profile.Draft

	mu        sync.Mutex
	store     *profile.Store
	stepper   *Stepper
	results   *recommendation.Results
	lastErr   error
	createdAt time.Time
	touchedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session identifier.
func WithID(id string) Option { return func(s *Session) { s.id = id } }

// WithDraft starts the session from d instead of a blank draft.
func WithDraft(d profile.Draft) Option { return func(s *Session) { s.initial = d } }

// WithTopN sets how many spending categories the payload highlights.
func WithTopN(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStepperOptions passes options through to the session's Stepper.
func WithStepperOptions(opts ...StepperOption) Option {
	return func(s *Session) { s.stepOpts = append(s.stepOpts, opts...) }
}

// NewSession creates a session that submits through sub.
func NewSession(sub Submitter, opts ...Option) *Session {
	s := &Session{
		submitter: sub,
		topN:      payload.DefaultTopN,
		now:       time.Now,
		initial:   profile.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = profile.NewStore(s.initial)
	s.stepper = NewStepper(s.stepOpts...)
	s.createdAt = s.now()
	s.touchedAt = s.createdAt
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Draft returns the current draft snapshot.
func (s *Session) Draft() profile.Draft { return s.store.Get() }

// TouchedAt returns when the session was last used.
func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepper.State()
}

func (s *Session) touch() { s.touchedAt = s.now() }

func (s *Session) editable() error {
	switch s.stepper.State() {
	case Submitting:
		return ErrSubmissionInFlight
	case Done:
		return ErrSessionDone
	}
	return nil
}

// SetField writes a JSON value at the dotted path.
func (s *Session) SetField(path string, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.touch()
	return s.store.SetRaw(path, raw)
}

// SetFields writes several values atomically.
func (s *Session) SetFields(values map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.touch()
	return s.store.SetMany(values)
}

// SetValue writes a typed value into the session draft.
func SetValue[T any](s *Session, f profile.Field[T], v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.touch()
	profile.Set(s.store, f, v)
	return nil
}

// Advance validates the current step and moves on. From the last step it
// formats the draft and submits it once; the session is Submitting for the
// duration of the call and the lock is not held meanwhile. A submission
// error is returned as is and leaves the session Failed.
func (s *Session) Advance(ctx context.Context) (Transition, error) {
	s.mu.Lock()
	s.touch()
	tr, err := s.stepper.Advance(s.store.Get())
	s.clearStaleError()
	if err != nil || !tr.Submit {
		s.mu.Unlock()
		return tr, err
	}
	if s.submitter == nil {
		s.stepper.Fail()
		s.lastErr = ErrNoSubmitter
		s.mu.Unlock()
		return tr, ErrNoSubmitter
	}
	p := payload.Format(s.store.Get(), payload.WithTopN(s.topN))
	s.mu.Unlock()

	res, err := s.submitter.Submit(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err != nil {
		s.stepper.Fail()
		s.lastErr = err
		return tr, err
	}
	s.stepper.Complete()
	s.results = &res
	s.store.Reset()
	return tr, nil
}

// Retreat goes back one step.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	err := s.stepper.Retreat()
	s.clearStaleError()
	return err
}

// clearStaleError forgets the last submission error once the flow has left
// Failed.
func (s *Session) clearStaleError() {
	if s.stepper.State() != Failed {
		s.lastErr = nil
	}
}

// Reset clears the draft and results and returns to step 1.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.stepper.Reset(); err != nil {
		return err
	}
	s.store.Reset()
	s.results = nil
	s.lastErr = nil
	return nil
}

// View is a consistent snapshot of a session for presentation.
type View struct {
	ID         string                  `json:"id"`
	Step       int                     `json:"step"`
	TotalSteps int                     `json:"total_steps"`
	State      State                   `json:"state"`
	Violations validation.Violations   `json:"violations"`
	Draft      profile.Draft           `json:"draft"`
	Results    *recommendation.Results `json:"results,omitempty"`
	Error      string                  `json:"error,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:         s.id,
		Step:       s.stepper.Step(),
		TotalSteps: s.stepper.Total(),
		State:      s.stepper.State(),
		Violations: s.stepper.Violations(),
		Draft:      s.store.Get(),
		Results:    s.results,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.touchedAt,
	}
	if v.Violations == nil {
		v.Violations = validation.Violations{}
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	return v
}

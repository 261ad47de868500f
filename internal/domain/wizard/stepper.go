// Package wizard drives a profile draft through the intake steps and the
// final submission.
package wizard

import (
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/validation"
)

// State is the phase of the flow beyond the current step number.
type State int

const (
	Editing State = iota
	Submitting
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Transition is the outcome of Advance.
type Transition struct {
	From       int
	To         int
	Violations validation.Violations
	// Submit is set when the last step validated and the caller must now
	// submit the draft.
	Submit bool
}

// Stepper tracks the current step. It is not safe for concurrent use.
type Stepper struct {
	total      int
	step       int
	state      State
	violations validation.Violations
	validate   func(int, profile.Draft) validation.Violations
	onChange   func(from, to int)
}

// StepperOption configures a Stepper.
type StepperOption func(*Stepper)

// WithTotalSteps overrides the number of steps.
func WithTotalSteps(n int) StepperOption {
	return func(s *Stepper) {
		if n > 0 {
			s.total = n
		}
	}
}

// WithValidator replaces the step validator.
func WithValidator(fn func(int, profile.Draft) validation.Violations) StepperOption {
	return func(s *Stepper) {
		if fn != nil {
			s.validate = fn
		}
	}
}

// WithTransitionHook registers fn to run whenever the visible step changes,
// e.g. to bring the new step into view.
func WithTransitionHook(fn func(from, to int)) StepperOption {
	return func(s *Stepper) { s.onChange = fn }
}

// NewStepper starts at step 1 in the Editing state.
func NewStepper(opts ...StepperOption) *Stepper {
	s := &Stepper{
		total:    profile.TotalSteps,
		step:     1,
		state:    Editing,
		validate: validation.Validate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step returns the current step number.
func (s *Stepper) Step() int { return s.step }

// Total returns the number of steps.
func (s *Stepper) Total() int { return s.total }

// State returns the current phase.
func (s *Stepper) State() State { return s.state }

// Violations returns the violations of the last rejected advance.
func (s *Stepper) Violations() validation.Violations { return s.violations }

// Advance validates the current step against d and moves forward when it
// passes. On the last step a pass moves to Submitting instead. A Failed
// flow behaves as if it were back on the last step.
func (s *Stepper) Advance(d profile.Draft) (Transition, error) {
	switch s.state {
	case Submitting:
		return Transition{}, ErrSubmissionInFlight
	case Done:
		return Transition{}, ErrSessionDone
	case Failed:
		s.state = Editing
	}

	from := s.step
	v := s.validate(from, d)
	if !v.OK() {
		s.violations = v
		return Transition{From: from, To: from, Violations: v}, nil
	}
	s.violations = nil

	if from >= s.total {
		s.state = Submitting
		return Transition{From: from, To: from, Submit: true}, nil
	}
	s.moveTo(from + 1)
	return Transition{From: from, To: s.step}, nil
}

// Retreat goes back one step, never below 1, and clears violations.
func (s *Stepper) Retreat() error {
	switch s.state {
	case Submitting:
		return ErrSubmissionInFlight
	case Done:
		return ErrSessionDone
	}
	s.state = Editing
	s.violations = nil
	if s.step > 1 {
		s.moveTo(s.step - 1)
	}
	return nil
}

// Complete records a successful submission.
func (s *Stepper) Complete() {
	if s.state == Submitting {
		s.state = Done
	}
}

// Fail records a failed submission. The user stays on the last step and
// may advance again to retry.
func (s *Stepper) Fail() {
	if s.state == Submitting {
		s.state = Failed
	}
}

// Reset returns to step 1 from any state except Submitting.
func (s *Stepper) Reset() error {
	if s.state == Submitting {
		return ErrSubmissionInFlight
	}
	s.state = Editing
	s.violations = nil
	s.moveTo(1)
	return nil
}

func (s *Stepper) moveTo(step int) {
	from := s.step
	s.step = step
	if from != step && s.onChange != nil {
		s.onChange(from, step)
	}
}

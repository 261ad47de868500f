package recommender

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/internal/resilience"
)

// Guarded fails fast while the remote service keeps failing.
type Guarded struct {
	next    wizard.Submitter
	breaker *resilience.Breaker
}

// Guard wraps next with b.
func Guard(next wizard.Submitter, b *resilience.Breaker) *Guarded {
	return &Guarded{next: next, breaker: b}
}

// Submit implements wizard.Submitter.
func (g *Guarded) Submit(ctx context.Context, p payload.Payload) (recommendation.Results, error) {
	var res recommendation.Results
	err := g.breaker.Do(func() error {
		var err error
		res, err = g.next.Submit(ctx, p)
		return err
	}, clientFault)
	if errors.Is(err, resilience.ErrOpen) {
		return recommendation.Results{}, transportError(opSubmit, err)
	}
	return res, err
}

// clientFault reports errors that say nothing about the service's health.
func clientFault(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var se *SubmissionError
	return errors.As(err, &se) && se.Status >= http.StatusBadRequest && se.Status < http.StatusInternalServerError
}

package recommender

import (
	"context"
	"errors"
	"time"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/pkg/logger"
	"github.com/okian/cardwise/pkg/metrics"
)

// Instrumented records metrics and logs for every submission.
type Instrumented struct {
	next wizard.Submitter
	name string
	log  logger.Logger
}

// Instrument wraps next. name identifies the strategy in logs.
func Instrument(next wizard.Submitter, name string, log logger.Logger) *Instrumented {
	if log == nil {
		log = logger.Discard()
	}
	return &Instrumented{next: next, name: name, log: log}
}

// Submit implements wizard.Submitter.
func (s *Instrumented) Submit(ctx context.Context, p payload.Payload) (recommendation.Results, error) {
	start := time.Now()
	res, err := s.next.Submit(ctx, p)
	elapsed := time.Since(start)

	outcome := Outcome(err)
	_ = metrics.RecordSubmission(outcome, float64(elapsed.Milliseconds()))

	if err != nil {
		s.log.Warn(ctx, "submission failed",
			logger.String("strategy", s.name),
			logger.String("outcome", outcome),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return res, err
	}
	s.log.Info(ctx, "submission succeeded",
		logger.String("strategy", s.name),
		logger.Int("recommendations", len(res.Recommendations)),
		logger.Int("lifestyle_score", res.UserProfile.LifestyleScore),
		logger.Duration("elapsed", elapsed))
	return res, nil
}

// Outcome classifies a submission error for metrics.
func Outcome(err error) string {
	var se *SubmissionError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	case errors.Is(err, ErrDecode):
		return metrics.OutcomeDecode
	case errors.As(err, &se) && se.Status > 0:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeTransport
	}
}

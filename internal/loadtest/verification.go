package loadtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/pkg/logger"
)

// verifyOutcomes checks every completed session against its own profile and
// counts recommendations and mismatches into stats.
func verifyOutcomes(ctx context.Context, cfg *Config, outcomes []Outcome, stats *Stats, log logger.Logger) error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		if o.Results == nil {
			errs = append(errs, fmt.Errorf("session %d: submitted without results", o.Index))
			stats.Mismatches++
			continue
		}
		stats.Recommendations += len(o.Results.Recommendations)
		if err := verifyResults(cfg.TopN, o); err != nil {
			errs = append(errs, fmt.Errorf("session %d: %w", o.Index, err))
			stats.Mismatches++
		}
	}

	if stats.SessionsCompleted == 0 {
		errs = append(errs, errors.New("no session completed"))
	}
	if len(errs) > 0 {
		log.Warn(ctx, "result verification found problems",
			logger.Int("mismatches", stats.Mismatches),
			logger.Error(errs[0]))
		return fmt.Errorf("%w: %w", ErrVerification, errors.Join(errs...))
	}
	log.Info(ctx, "result verification completed", logger.Int("recommendations", stats.Recommendations))
	return nil
}

// verifyResults recomputes the profile summary locally and checks each
// recommendation is presentable.
func verifyResults(topN int, o Outcome) error {
	res := o.Results
	if len(res.Recommendations) == 0 {
		return errors.New("no recommendations")
	}
	for i, r := range res.Recommendations {
		if r.CardName == "" {
			return fmt.Errorf("recommendation %d has no card name", i)
		}
		if r.MatchPercentage < 0 || r.MatchPercentage > 100 {
			return fmt.Errorf("recommendation %d match %.1f out of range", i, r.MatchPercentage)
		}
		if len(r.MatchReasons) == 0 {
			return fmt.Errorf("recommendation %d has no match reasons", i)
		}
	}

	p := payload.Format(o.Draft, payload.WithTopN(topN))
	if want := recommendation.LifestyleScore(p); res.UserProfile.LifestyleScore != want {
		return fmt.Errorf("lifestyle score %d, want %d", res.UserProfile.LifestyleScore, want)
	}
	got := res.UserProfile.TopCategories
	if len(got) != len(p.TopCategories) {
		return fmt.Errorf("top categories %d, want %d", len(got), len(p.TopCategories))
	}
	for i := range got {
		if got[i] != p.TopCategories[i] {
			return fmt.Errorf("top category %d is %s, want %s", i, got[i].Category, p.TopCategories[i].Category)
		}
	}
	return nil
}

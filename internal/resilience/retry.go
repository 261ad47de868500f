// Package resilience holds small helpers for calling flaky dependencies.
package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/cardwise/pkg/logger"
)

// Retry calls fn up to attempts times, sleeping delay between calls. It stops
// early when ctx is done.
func Retry(ctx context.Context, attempts int, delay time.Duration, log logger.Logger, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if log == nil {
		log = logger.Discard()
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			log.Info(ctx, "retrying", logger.Int("attempt", i+1), logger.Error(err))
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("retry aborted after %d attempts: %w", i, ctx.Err())
			case <-t.C:
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("after %d attempts, last error: %w", attempts, err)
}

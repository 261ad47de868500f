package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/resilience"
	"github.com/okian/cardwise/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o640
)

// ErrVerification is returned when the run completed but results disagree
// with the profiles that produced them.
var ErrVerification = errors.New("result verification failed")

// Run executes the complete load run against cfg.BaseURL.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	log := logger.Named("loadtest")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting cardwise load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Int("topN", cfg.TopN),
		logger.Bool("verbose", cfg.Verbose))

	client := newAPIClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := resilience.Retry(ctx, cfg.HealthRetries, cfg.HealthDelay, log, client.health); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	// Step 2: Generate profiles
	drafts := Generate(cfg.Sessions)
	stats.SessionsGenerated = len(drafts)

	// Step 3: Walk sessions concurrently
	outcomes, err := walkAll(ctx, &cfg, client, drafts, stats, log)
	if err != nil {
		return stats, fmt.Errorf("session walk failed: %w", err)
	}

	// Step 4: Verify results
	verifyErr := verifyOutcomes(ctx, &cfg, outcomes, stats, log)

	// Step 5: Save profiles to file
	if cfg.OutputFile != "" {
		if err := saveDrafts(cfg.OutputFile, drafts); err != nil {
			log.Warn(ctx, "failed to save profiles to file", logger.Error(err))
		} else {
			log.Info(ctx, "profiles saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	log.Info(ctx, "load run completed successfully")
	return stats, nil
}

// walkAll runs one session per draft with at most cfg.Workers in flight.
func walkAll(ctx context.Context, cfg *Config, client *apiClient, drafts []profile.Draft, stats *Stats, log logger.Logger) ([]Outcome, error) {
	outcomes := make([]Outcome, len(drafts))
	var started, completed, rejected, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, d := range drafts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := walkOne(gctx, client, i, d)
			outcomes[i] = o
			if o.SessionID != "" {
				started.Add(1)
			}
			switch {
			case o.Err == nil:
				completed.Add(1)
			case len(o.Violations) > 0:
				rejected.Add(1)
			default:
				failed.Add(1)
			}
			if cfg.Verbose {
				log.Info(gctx, "session finished",
					logger.Int("index", i),
					logger.String("session", o.SessionID),
					logger.Int("status", o.Status),
					logger.Duration("latency", o.Latency),
					logger.Error(o.Err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.SessionsStarted = int(started.Load())
	stats.SessionsCompleted = int(completed.Load())
	stats.SessionsRejected = int(rejected.Load())
	stats.SessionsFailed = int(failed.Load())
	log.Info(ctx, "session walk completed",
		logger.Int("completed", stats.SessionsCompleted),
		logger.Int("rejected", stats.SessionsRejected),
		logger.Int("failed", stats.SessionsFailed))
	return outcomes, nil
}

// walkOne creates a session, fills it with d, advances through every step
// and discards the session.
func walkOne(ctx context.Context, client *apiClient, index int, d profile.Draft) (o Outcome) {
	o = Outcome{Index: index, Draft: d}
	begin := time.Now()
	defer func() { o.Latency = time.Since(begin) }()

	v, err := client.start(ctx)
	if err != nil {
		o.Err = err
		return o
	}
	o.SessionID = v.ID
	defer func() { _ = client.discard(context.WithoutCancel(ctx), v.ID) }()

	if err := client.fill(ctx, v.ID, d); err != nil {
		o.Err = err
		return o
	}

	for range profile.TotalSteps {
		status, tr, err := client.advance(ctx, v.ID)
		o.Status = status
		if err != nil {
			o.Err = err
			return o
		}
		switch {
		case status == http.StatusUnprocessableEntity:
			o.Violations = tr.Violations
			o.Err = fmt.Errorf("step %d rejected: %v", tr.From, tr.Violations)
			return o
		case status != http.StatusOK:
			msg := http.StatusText(status)
			if tr.Error != nil {
				msg = tr.Error.Message
			}
			o.Err = fmt.Errorf("advance from step %d: %s", tr.From, msg)
			return o
		case tr.Submitted:
			o.Results = tr.Session.Results
			return o
		}
	}
	o.Err = errors.New("session never submitted")
	return o
}

// saveDrafts writes the generated profiles as a JSON array.
func saveDrafts(filename string, drafts []profile.Draft) error {
	if len(drafts) == 0 {
		return errors.New("no profiles to save")
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(drafts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("sessionsGenerated", stats.SessionsGenerated),
		logger.Int("sessionsStarted", stats.SessionsStarted),
		logger.Int("sessionsCompleted", stats.SessionsCompleted),
		logger.Int("sessionsRejected", stats.SessionsRejected),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("recommendations", stats.Recommendations),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", stats.SuccessRate()),
		logger.Float64("sessionsPerSecond", stats.SessionsPerSecond()))
}

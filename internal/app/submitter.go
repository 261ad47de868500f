package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/cardwise/internal/adapters/cache"
	"github.com/okian/cardwise/internal/adapters/recommender"
	"github.com/okian/cardwise/internal/config"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/internal/resilience"
	"github.com/okian/cardwise/pkg/logger"
)

// Submission is the configured submission chain and what it holds open.
type Submission struct {
	Submitter wizard.Submitter
	// Client is set in remote mode.
	Client *recommender.Client
	cache  cache.Cache
}

// Close releases the result cache, if any.
func (s *Submission) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// NewSubmission builds the submitter selected by cfg: the remote client or
// the bundled catalog, optionally behind a breaker and a result cache, and
// always instrumented.
func NewSubmission(ctx context.Context, cfg *config.Config, log logger.Logger) (*Submission, error) {
	if log == nil {
		log = logger.Discard()
	}
	s := &Submission{}

	var sub wizard.Submitter
	switch cfg.RecommenderMode {
	case config.ModeCatalog:
		sub = recommender.NewCatalog()
	case config.ModeRemote:
		s.Client = recommender.NewClient(cfg.RecommenderURL,
			recommender.WithTimeout(cfg.RequestTimeout()),
			recommender.WithLogger(log.Named("recommender")),
		)
		sub = s.Client
		if cfg.BreakerThreshold > 0 {
			sub = recommender.Guard(sub, resilience.NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown()))
		}
	default:
		return nil, fmt.Errorf("%w: recommender_mode %q", config.ErrInvalidConfig, cfg.RecommenderMode)
	}

	switch cfg.CacheBackend {
	case config.CacheMemory:
		s.cache = cache.NewMemory(time.Now,
			cache.WithMaxEntries(cfg.CacheMaxEntries),
			cache.WithSweepInterval(cfg.CacheTTL()),
		)
	case config.CacheRedis:
		rc := cache.NewRedis(cfg.RedisAddr)
		if err := rc.Ping(ctx); err != nil {
			log.Warn(ctx, "redis cache unreachable at startup; lookups will be bypassed until it recovers",
				logger.String("addr", cfg.RedisAddr), logger.Error(err))
		}
		s.cache = rc
	}
	if s.cache != nil {
		sub = recommender.NewCached(sub, s.cache, cfg.CacheTTL(), log.Named("cache"))
	}

	s.Submitter = recommender.Instrument(sub, cfg.RecommenderMode, log.Named("submission"))
	return s, nil
}

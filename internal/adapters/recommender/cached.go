package recommender

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/okian/cardwise/internal/adapters/cache"
	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/pkg/logger"
	"github.com/okian/cardwise/pkg/metrics"
)

// Cached serves repeated identical payloads from a cache. Payload encoding
// is deterministic, so its hash is a stable key. Cache failures are logged
// and bypassed; a miss still costs exactly one call to the wrapped submitter.
type Cached struct {
	next  wizard.Submitter
	cache cache.Cache
	ttl   time.Duration
	log   logger.Logger
}

// NewCached wraps next with c.
func NewCached(next wizard.Submitter, c cache.Cache, ttl time.Duration, log logger.Logger) *Cached {
	if log == nil {
		log = logger.Discard()
	}
	return &Cached{next: next, cache: c, ttl: ttl, log: log}
}

// Key returns the cache key of p.
func Key(p payload.Payload) (string, error) {
	b, err := payload.Encode(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Submit implements wizard.Submitter.
func (c *Cached) Submit(ctx context.Context, p payload.Payload) (recommendation.Results, error) {
	key, err := Key(p)
	if err != nil {
		return c.next.Submit(ctx, p)
	}

	if b, err := c.cache.Get(ctx, key); err == nil {
		var res recommendation.Results
		if err := json.Unmarshal(b, &res); err == nil {
			metrics.RecordCacheHit()
			return res, nil
		}
		c.log.Warn(ctx, "discarding unreadable cached results", logger.String("key", key))
	} else if !errors.Is(err, cache.ErrMiss) {
		metrics.RecordCacheError()
		c.log.Warn(ctx, "recommendation cache read failed", logger.Error(err))
	}
	metrics.RecordCacheMiss()

	res, err := c.next.Submit(ctx, p)
	if err != nil {
		return res, err
	}

	if b, err := json.Marshal(res); err == nil {
		if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
			metrics.RecordCacheError()
			c.log.Warn(ctx, "recommendation cache write failed", logger.Error(err))
		}
	}
	return res, nil
}

// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Recommender modes.
const (
	ModeRemote  = "remote"
	ModeCatalog = "catalog"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RecommenderMode picks the submission strategy: remote or catalog.
	RecommenderMode string `koanf:"recommender_mode"`

	// RecommenderURL is the recommendation endpoint used in remote mode.
	RecommenderURL string `koanf:"recommender_url"`

	// RequestTimeoutMS bounds a single submission round-trip.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// TopCategories is how many spending categories the payload highlights.
	TopCategories int `koanf:"top_categories"`

	// SessionTTLSeconds is how long an idle wizard session survives.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// MaxSessions caps concurrently held sessions. Zero means unbounded.
	MaxSessions int `koanf:"max_sessions"`

	// SweepIntervalMS is how often expired sessions are collected.
	SweepIntervalMS int `koanf:"sweep_interval_ms"`

	// CacheBackend selects result caching: none, memory or redis.
	CacheBackend string `koanf:"cache_backend"`

	// RedisAddr is the redis host:port used when CacheBackend is redis.
	RedisAddr string `koanf:"redis_addr"`

	// CacheTTLSeconds is how long cached results stay valid.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheMaxEntries bounds the memory cache.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// BreakerThreshold is the number of consecutive remote failures that
	// open the circuit breaker. Zero disables it.
	BreakerThreshold int `koanf:"breaker_threshold"`

	// BreakerCooldownMS is how long an open breaker rejects submissions.
	BreakerCooldownMS int `koanf:"breaker_cooldown_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		RecommenderMode:   ModeRemote,
		RecommenderURL:    "http://localhost:5000/api/recommend",
		RequestTimeoutMS:  15_000,
		TopCategories:     3,
		SessionTTLSeconds: 1800,
		MaxSessions:       10_000,
		SweepIntervalMS:   30_000,
		CacheBackend:      CacheNone,
		RedisAddr:         "localhost:6379",
		CacheTTLSeconds:   600,
		CacheMaxEntries:   10_000,
		MetricsNamespace:  "cardwise",
		BreakerThreshold:  5,
		BreakerCooldownMS: 30_000,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// SweepInterval returns SweepIntervalMS as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// BreakerCooldown returns BreakerCooldownMS as a duration.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownMS) * time.Millisecond
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	c.RecommenderMode = strings.ToLower(strings.TrimSpace(c.RecommenderMode))
	c.CacheBackend = strings.ToLower(strings.TrimSpace(c.CacheBackend))

	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RecommenderMode != ModeRemote && c.RecommenderMode != ModeCatalog:
		return fmt.Errorf("%w: recommender_mode must be %q or %q, got %q",
			ErrInvalidConfig, ModeRemote, ModeCatalog, c.RecommenderMode)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.TopCategories <= 0:
		return fmt.Errorf("%w: top_categories must be positive", ErrInvalidConfig)
	case c.SessionTTLSeconds <= 0:
		return fmt.Errorf("%w: session_ttl_seconds must be positive", ErrInvalidConfig)
	case c.MaxSessions < 0:
		return fmt.Errorf("%w: max_sessions must not be negative", ErrInvalidConfig)
	case c.SweepIntervalMS <= 0:
		return fmt.Errorf("%w: sweep_interval_ms must be positive", ErrInvalidConfig)
	case c.BreakerThreshold < 0:
		return fmt.Errorf("%w: breaker_threshold must not be negative", ErrInvalidConfig)
	case c.BreakerThreshold > 0 && c.BreakerCooldownMS <= 0:
		return fmt.Errorf("%w: breaker_cooldown_ms must be positive", ErrInvalidConfig)
	}

	if c.RecommenderMode == ModeRemote {
		u, err := url.Parse(c.RecommenderURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: recommender_url %q is not an absolute URL", ErrInvalidConfig, c.RecommenderURL)
		}
	}

	if c.MetricsNamespace == "" {
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}

	switch c.CacheBackend {
	case CacheNone:
	case CacheMemory, CacheRedis:
		if c.CacheTTLSeconds <= 0 {
			return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
		}
		if c.CacheBackend == CacheMemory && c.CacheMaxEntries <= 0 {
			return fmt.Errorf("%w: cache_max_entries must be positive", ErrInvalidConfig)
		}
		if c.CacheBackend == CacheRedis && c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	return nil
}

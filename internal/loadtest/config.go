// Package loadtest drives a running cardwise server through many complete
// wizard sessions and checks the recommendations that come back.
package loadtest

import (
	"time"

	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Sessions      int           // Number of sessions to walk through
	Workers       int           // Number of concurrent workers
	TopN          int           // Top categories the server is configured with
	Timeout       time.Duration // HTTP request timeout
	HealthRetries int           // Health check attempts before giving up
	HealthDelay   time.Duration // Delay between health check attempts
	OutputFile    string        // Output file for generated profiles
	Verbose       bool          // Log every session
}

// Defaults used when a Config field is left zero.
const (
	DefaultSessions      = 100
	DefaultWorkers       = 8
	DefaultTimeout       = 10 * time.Second
	DefaultHealthRetries = 5
	DefaultHealthDelay   = 2 * time.Second

	percentageMultiplier = 100
)

func (c *Config) withDefaults() Config {
	out := *c
	if out.Sessions <= 0 {
		out.Sessions = DefaultSessions
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.TopN <= 0 {
		out.TopN = 3
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.HealthRetries <= 0 {
		out.HealthRetries = DefaultHealthRetries
	}
	if out.HealthDelay <= 0 {
		out.HealthDelay = DefaultHealthDelay
	}
	return out
}

// Outcome is what happened to one generated profile.
type Outcome struct {
	Index      int
	SessionID  string
	Draft      profile.Draft
	Status     int
	Violations []string
	Results    *recommendation.Results
	Err        error
	Latency    time.Duration
}

// Stats holds run statistics.
type Stats struct {
	SessionsGenerated int
	SessionsStarted   int
	SessionsCompleted int
	SessionsRejected  int
	SessionsFailed    int
	Recommendations   int
	Mismatches        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// SuccessRate is the share of started sessions that completed, in percent.
func (s *Stats) SuccessRate() float64 {
	if s.SessionsStarted == 0 {
		return 0
	}
	return float64(s.SessionsCompleted) / float64(s.SessionsStarted) * percentageMultiplier
}

// SessionsPerSecond is the completed session throughput.
func (s *Stats) SessionsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.SessionsCompleted) / s.Duration.Seconds()
}

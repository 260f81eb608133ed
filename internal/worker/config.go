package worker

import (
	"fmt"
	"time"
)

// Bounds enforced by Config.Validate.
const (
	MaxConcurrency               = 100
	MinPollInterval              = time.Second
	MinJobTimeout                = time.Second
	MinShutdownTimeout           = time.Second
	MinStaleJobThreshold         = time.Minute
	MinComplianceSweepInterval   = time.Minute
	staleJobThresholdPerTimeouts = 2
)

// Config controls the job queue workers and the compliance sweep.
type Config struct {
	// Concurrency is the number of goroutines dequeuing jobs.
	Concurrency int

	// PollInterval is how often an idle goroutine checks the queue.
	PollInterval time.Duration

	// JobTimeout bounds a single recompute or export run.
	JobTimeout time.Duration

	// ShutdownTimeout is how long Stop waits for running jobs.
	ShutdownTimeout time.Duration

	// StaleJobThreshold is how long a job may stay running before startup
	// recovery puts it back in the queue. Zero derives it from JobTimeout.
	StaleJobThreshold time.Duration

	// ComplianceSweepInterval is how often every equipment snapshot is
	// queued for recompute. Zero disables the sweep.
	ComplianceSweepInterval time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Concurrency:             2,
		PollInterval:            5 * time.Second,
		JobTimeout:              5 * time.Minute,
		ShutdownTimeout:         30 * time.Second,
		StaleJobThreshold:       10 * time.Minute,
		ComplianceSweepInterval: time.Hour,
	}
}

// StaleThresholdFor returns twice jobTimeout, never less than
// MinStaleJobThreshold.
func StaleThresholdFor(jobTimeout time.Duration) time.Duration {
	return max(staleJobThresholdPerTimeouts*jobTimeout, MinStaleJobThreshold)
}

// withDerived fills fields left at zero that depend on other fields.
func (c Config) withDerived() Config {
	if c.StaleJobThreshold == 0 {
		c.StaleJobThreshold = StaleThresholdFor(c.JobTimeout)
	}
	return c
}

// Validate checks the configuration after derived fields are filled.
func (c Config) Validate() error {
	c = c.withDerived()

	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Concurrency > MaxConcurrency {
		return fmt.Errorf("concurrency too high (max %d), got %d", MaxConcurrency, c.Concurrency)
	}
	if c.PollInterval < MinPollInterval {
		return fmt.Errorf("poll interval must be at least %v, got %v", MinPollInterval, c.PollInterval)
	}
	if c.JobTimeout < MinJobTimeout {
		return fmt.Errorf("job timeout must be at least %v, got %v", MinJobTimeout, c.JobTimeout)
	}
	if c.ShutdownTimeout < MinShutdownTimeout {
		return fmt.Errorf("shutdown timeout must be at least %v, got %v", MinShutdownTimeout, c.ShutdownTimeout)
	}
	if c.StaleJobThreshold < MinStaleJobThreshold {
		return fmt.Errorf("stale job threshold must be at least %v, got %v", MinStaleJobThreshold, c.StaleJobThreshold)
	}
	// A running job younger than its timeout is still live.
	if c.StaleJobThreshold < c.JobTimeout {
		return fmt.Errorf("stale job threshold %v is shorter than job timeout %v", c.StaleJobThreshold, c.JobTimeout)
	}
	if c.ComplianceSweepInterval < 0 {
		return fmt.Errorf("compliance sweep interval must not be negative, got %v", c.ComplianceSweepInterval)
	}
	if c.ComplianceSweepInterval > 0 && c.ComplianceSweepInterval < MinComplianceSweepInterval {
		return fmt.Errorf("compliance sweep interval must be 0 or at least %v, got %v", MinComplianceSweepInterval, c.ComplianceSweepInterval)
	}
	return nil
}

// Package retry provides a bounded retry mechanism with exponential
// backoff for rate-limited platform calls. Retryability is decided by
// the caller from typed API outcomes, never inferred from error text.
package retry

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultMaxAttempts  = 5
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 30 * time.Second
)

// Config represents retry configuration.
type Config struct {
	MaxAttempts    int           // Maximum number of attempts (default: 5)
	InitialBackoff time.Duration // Initial backoff duration (default: 1s)
	MaxBackoff     time.Duration // Maximum backoff duration (default: 30s)
}

func (cfg Config) withDefaults() Config {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialDelay
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxDelay
	}
	return cfg
}

// Do executes fn up to cfg.MaxAttempts times. fn reports whether its
// failure may be retried and, optionally, a platform-suggested wait
// before the next attempt; a zero wait falls back to exponential
// backoff. Context cancellation is honored during every wait and
// between attempts.
func Do(ctx context.Context, cfg Config, fn func(attempt int) (retryAfter time.Duration, retryable bool, err error)) error {
	cfg = cfg.withDefaults()

	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		retryAfter, retryable, err := fn(attempt)
		if err == nil {
			return nil
		}

		lastErr = err

		if !retryable {
			return err
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		wait := retryAfter
		if wait <= 0 {
			wait = Backoff(attempt, cfg)
		}

		if err := Sleep(ctx, wait); err != nil {
			return err
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}

// Sleep waits for d or until ctx is cancelled, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Backoff calculates the wait for a given attempt: 2^attempt * initial,
// capped at MaxBackoff.
func Backoff(attempt int, cfg Config) time.Duration {
	cfg = cfg.withDefaults()

	backoff := time.Duration(1<<uint(attempt)) * cfg.InitialBackoff
	if backoff > cfg.MaxBackoff || backoff <= 0 {
		return cfg.MaxBackoff
	}

	return backoff
}

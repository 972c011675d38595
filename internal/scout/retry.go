package scout

import (
	"context"
	"log"
	"math"
	"time"
)

// RetryConfig controls exponential backoff behaviour.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration // 0 = uncapped
}

// DefaultRetryConfig returns 3 attempts starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
	}
}

// delay returns the wait after the given failed attempt (1-based).
func (c RetryConfig) delay(attempt int) time.Duration {
	d := c.InitialDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// sleep waits for d or until ctx is done. Tests swap it to record delays.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry runs op until it succeeds or MaxAttempts is reached, waiting
// InitialDelay * 2^(attempt-1) between attempts. Failures are not classified.
// When every attempt fails it logs the last error and returns ok == false.
func Retry[T any](ctx context.Context, cfg RetryConfig, name string, op func(context.Context) (T, error)) (T, bool) {
	var zero T

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			retryAttempts.WithLabelValues(name, "ok").Inc()
			if attempt > 1 {
				log.Printf("INFO: %s succeeded on attempt %d", name, attempt)
			}
			return v, true
		}
		retryAttempts.WithLabelValues(name, "error").Inc()
		lastErr = err

		if attempt == attempts {
			break
		}

		wait := cfg.delay(attempt)
		log.Printf("WARN: attempt %d failed for %s, retrying in %s: %v", attempt, name, wait, err)
		if err := sleep(ctx, wait); err != nil {
			log.Printf("ERROR: %s abandoned during backoff: %v (last error: %v)", name, err, lastErr)
			retryExhausted.WithLabelValues(name).Inc()
			return zero, false
		}
	}

	log.Printf("ERROR: all %d attempts failed for %s: %v", attempts, name, lastErr)
	retryExhausted.WithLabelValues(name).Inc()
	return zero, false
}

package llm

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds retry configuration for LLM requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps the maximum backoff duration.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns sensible retry defaults for LLM requests.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       4,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// Backoff returns the wait before retry number n (1-based).
func (c RetryConfig) Backoff(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	d := float64(c.BackoffBase)
	for i := 1; i < n; i++ {
		d *= c.BackoffMultiplier
	}
	if c.MaxBackoff > 0 && time.Duration(d) > c.MaxBackoff {
		return c.MaxBackoff
	}
	return time.Duration(d)
}

// do runs fn until it succeeds, returns a non-transient error, or attempts
// run out. It returns the number of attempts made.
func (c RetryConfig) do(ctx context.Context, fn func() error) (int, error) {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(c.Backoff(i))
			select {
			case <-ctx.Done():
				timer.Stop()
				return i, ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return i + 1, nil
		}
		if !IsTransient(lastErr) {
			return i + 1, lastErr
		}
	}
	return attempts, fmt.Errorf("max retries exceeded: %w", lastErr)
}

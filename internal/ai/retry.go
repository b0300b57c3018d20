package ai

import (
	"context"
	"errors"
	"log"
	"math"
	"time"
)

// RetryConfig parameterizes WithRetry.
type RetryConfig struct {
	MaxRetries      int // additional attempts beyond the first
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
	RetryableKinds  []ErrorKind
}

// DefaultRetryConfig returns the standard retry policy: three retries
// with exponential backoff, retrying only transient error kinds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		BaseDelay:       time.Second,
		MaxDelay:        30 * time.Second,
		ExponentialBase: 2,
		RetryableKinds:  []ErrorKind{ErrKindRateLimit, ErrKindTimeout, ErrKindNetwork},
	}
}

func (c RetryConfig) retryable(kind ErrorKind) bool {
	for _, k := range c.RetryableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// delayFor computes the backoff before retry number attempt (0-based).
// An explicit RetryAfterSecs on the error overrides the computed delay.
func (c RetryConfig) delayFor(attempt int, err *Error) time.Duration {
	if err != nil && err.RetryAfterSecs > 0 {
		return time.Duration(err.RetryAfterSecs) * time.Second
	}
	d := time.Duration(float64(c.BaseDelay) * math.Pow(c.ExponentialBase, float64(attempt)))
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// WithRetry runs op up to cfg.MaxRetries+1 times. Only errors whose kind
// is in the retryable allow-list are retried; everything else propagates
// on first occurrence. The last attempt's error is the one returned when
// all retries are exhausted; intermediate errors are not accumulated.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var aiErr *Error
		if !errors.As(err, &aiErr) || !cfg.retryable(aiErr.Kind) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			return zero, err
		}

		delay := cfg.delayFor(attempt, aiErr)
		log.Printf("ai.WithRetry: %s failed (%s), retrying in %s (attempt %d/%d)",
			aiErr.Provider, aiErr.Kind, delay, attempt+1, cfg.MaxRetries)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ClassifyTransport(aiErr.Provider, ctx.Err())
		case <-timer.C:
		}
	}
	return zero, lastErr
}

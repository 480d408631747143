package resilience

import (
	"context"
	"errors"
	"time"
)

// RetryConfig configures the retry wrapper around one vendor call.
type RetryConfig struct {
	// Attempts is the total number of attempts, including the first.
	Attempts int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
	// PerAttemptTimeout bounds each attempt independently. The wrapper's
	// worst-case latency is Attempts × PerAttemptTimeout plus delays.
	PerAttemptTimeout time.Duration
	// RetryIf decides whether an error is worth another attempt.
	// Defaults to retrying everything except context errors.
	RetryIf func(error) bool
	// OnRetry is called before each re-attempt.
	OnRetry func(attempt int, err error)
}

// DefaultRetryIf retries all errors except context cancellation.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Retry executes fn with bounded attempts. Each attempt runs under its own
// timeout derived from ctx; attempts are strictly sequential. The last
// error is returned once attempts are exhausted.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.PerAttemptTimeout <= 0 {
		cfg.PerAttemptTimeout = 2 * time.Second
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		attemptCtx, cancel := context.WithTimeout(ctx, cfg.PerAttemptTimeout)
		result, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !cfg.RetryIf(err) {
			return zero, err
		}
		if attempt == cfg.Attempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		if cfg.Delay > 0 {
			timer := time.NewTimer(cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, lastErr
}

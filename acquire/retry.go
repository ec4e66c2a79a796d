package acquire

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
)

// DefaultRetryDelays returns the backoff delays for download retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Retry calls fn until it succeeds, fails with an error that is not
// docsearch.Retryable, or the delays are used up. It makes len(delays)+1
// attempts at most and returns the last error.
func Retry(ctx context.Context, delays []time.Duration, logger *slog.Logger, op string, fn func(ctx context.Context) error) error {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !docsearch.Retryable(err) || attempt >= maxAttempts-1 {
			break
		}

		if logger != nil {
			logger.Warn("retrying", "op", op, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return lastErr
}

package utils

import (
	"context"
	"log/slog"
	"time"
)

// Attempt runs op up to maxAttempts times, waiting between failures with
// a doubling backoff that starts at initialBackoff. Returns the first
// successful value, or the last error once attempts are exhausted. A
// cancelled context cuts the wait short.
func Attempt[T any](ctx context.Context, op func() (T, error), maxAttempts int, initialBackoff time.Duration) (T, error) {
	var zero T
	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, err := op()
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		slog.Warn("[Attempt] Operation failed, backing off",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return zero, lastErr
}

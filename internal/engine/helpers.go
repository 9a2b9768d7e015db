package engine

import (
	"context"
	"time"

	"ladderbot/internal/exchange"
)

const maxBackoff = 30 * time.Second

// withRetry calls fn until it succeeds, doubling the wait between attempts.
// Rate-limit errors wait four times longer.
func withRetry[T any](ctx context.Context, e *Engine, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	backoff := e.retryBase
	attempts := max(e.retries, 1)
	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		wait := min(backoff, maxBackoff)
		if exchange.IsRateLimit(err) {
			wait = min(backoff*4, maxBackoff)
		}
		e.logEntry().WithError(err).WithField("wait", wait).Warn("Request failed, retrying.")
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
	return zero, lastErr
}

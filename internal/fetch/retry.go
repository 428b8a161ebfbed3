package fetch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type retryFetcher struct {
	next     Fetcher
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

// WithRetry wraps next so that each fetch is tried up to attempts times,
// doubling the wait after every failure. attempts <= 1 returns next unchanged.
func WithRetry(next Fetcher, attempts int, backoff time.Duration, logger *zap.Logger) Fetcher {
	if attempts <= 1 {
		return next
	}
	return &retryFetcher{next: next, attempts: attempts, backoff: backoff, logger: logger}
}

func (r *retryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	wait := r.backoff

	for attempt := 1; attempt <= r.attempts; attempt++ {
		doc, err := r.next.Fetch(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}
		r.logger.Warn("fetch failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return "", fmt.Errorf("all %d attempts failed: %w", r.attempts, lastErr)
}

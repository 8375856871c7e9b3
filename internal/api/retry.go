package api

import (
	"context"
	"errors"
	"time"

	"github.com/atlasprime/atlas/internal/logger"
)

// DefaultRetryAttempts bounds the retry helper.
const DefaultRetryAttempts = 3

// baseRetryDelay is doubled after each failed attempt (1s, 2s, 4s...).
var baseRetryDelay = time.Second

// Retry runs fn up to attempts times, sleeping with exponential backoff
// between failures. Only transient failures (network-class, 5xx) are retried;
// any 4xx is returned immediately. Nothing in the gateway retries on its own,
// callers opt in per call site.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}

	var lastErr error
	delay := baseRetryDelay

	for i := 0; i < attempts; i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var apiErr *Error
		if !errors.As(lastErr, &apiErr) || !apiErr.Retryable() {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		logger.Debugf("api: retrying after %v (attempt %d/%d): %v", delay, i+1, attempts, lastErr)
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}

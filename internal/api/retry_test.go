package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFastRetry(t *testing.T) {
	t.Helper()
	prev := baseRetryDelay
	baseRetryDelay = time.Millisecond
	t.Cleanup(func() { baseRetryDelay = prev })
}

func TestRetryTransientFailureEventuallySucceeds(t *testing.T) {
	withFastRetry(t)

	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return &Error{Code: CodeServerError, Status: 500, Message: "boom"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUpAfterAttempts(t *testing.T) {
	withFastRetry(t)

	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return &Error{Code: CodeNetworkError, Message: "down"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryNeverRetriesClientErrors(t *testing.T) {
	withFastRetry(t)

	codes := []struct {
		code   ErrorCode
		status int
	}{
		{CodeBadRequest, 400},
		{CodeUnauthorized, 401},
		{CodeForbidden, 403},
		{CodeNotFound, 404},
		{CodeConflict, 409},
		{CodeValidationError, 422},
		{CodeRateLimit, 429},
	}

	for _, tt := range codes {
		t.Run(string(tt.code), func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), 3, func() error {
				calls++
				return &Error{Code: tt.code, Status: tt.status, Message: "nope"}
			})

			require.Error(t, err)
			assert.Equal(t, 1, calls, "%s must not be retried", tt.code)
		})
	}
}

func TestRetryStopsOnNonAPIError(t *testing.T) {
	withFastRetry(t)

	calls := 0
	sentinel := errors.New("plain failure")
	err := Retry(context.Background(), 3, func() error {
		calls++
		return sentinel
	})

	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	prev := baseRetryDelay
	baseRetryDelay = time.Minute
	t.Cleanup(func() { baseRetryDelay = prev })

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, 3, func() error {
			calls++
			return &Error{Code: CodeNetworkError, Message: "down"}
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, 1, calls, "cancellation must short-circuit the backoff sleep")
	case <-time.After(5 * time.Second):
		t.Fatal("Retry did not return after context cancellation")
	}
}

func TestRetryZeroAttemptsUsesDefault(t *testing.T) {
	withFastRetry(t)

	calls := 0
	_ = Retry(context.Background(), 0, func() error {
		calls++
		return &Error{Code: CodeServiceUnavailable, Status: 503, Message: "busy"}
	})

	assert.Equal(t, DefaultRetryAttempts, calls)
}

package common

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/spice-relay/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: errors.New("flaky"), Retryable: true}
			}
			return nil
		}, fastRetry(5))

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on fatal error", func(t *testing.T) {
		calls := 0
		fatal := HTTPStatusError("test", http.StatusUnauthorized, []byte("bad token"))
		err := WithRetry(context.Background(), func() error {
			calls++
			return fatal
		}, fastRetry(5))

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("plain errors are not retried", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errors.New("boom")
		}, fastRetry(3))

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return HTTPStatusError("test", http.StatusBadGateway, nil)
		}, fastRetry(3))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			cancel()
			return TransportError("test", errors.New("connection refused"))
		}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestHTTPStatusError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
		rateLimit bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, retryable: true, rateLimit: true},
		{name: "server error", status: http.StatusInternalServerError, retryable: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, retryable: true},
		{name: "bad request", status: http.StatusBadRequest, retryable: false},
		{name: "forbidden", status: http.StatusForbidden, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HTTPStatusError("svc", tt.status, []byte("body"))
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Equal(t, tt.rateLimit, errors.Is(err, ErrRateLimit))
		})
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save", inner)

	assert.Equal(t, "could not save: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "could not save", userErr.UserMessage)
}

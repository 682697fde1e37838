// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common application errors.
var (
	// Correlation errors.
	ErrNoPending            = errors.New("no pending transaction")
	ErrClassificationFailed = errors.New("classification failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-facing error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}

// HTTPStatusError builds the error for a non-2xx answer from a remote API.
// 429 and 5xx are retryable, every other status is fatal.
func HTTPStatusError(service string, status int, body []byte) error {
	err := fmt.Errorf("%s API error (status %d): %s", service, status, string(body))

	switch {
	case status == http.StatusTooManyRequests:
		return &RetryableError{Err: fmt.Errorf("%w: %w", ErrRateLimit, err), Retryable: true}
	case status >= http.StatusInternalServerError:
		return &RetryableError{Err: err, Retryable: true}
	default:
		return &RetryableError{Err: err, Retryable: false}
	}
}

// TransportError marks a failure to reach a remote API as retryable.
func TransportError(service string, err error) error {
	return &RetryableError{Err: fmt.Errorf("%s request failed: %w", service, err), Retryable: true}
}

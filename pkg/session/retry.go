package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deeptime/pkg/errors"
)

// ErrUnavailable marks a remote store that cannot be reached.
var ErrUnavailable = stderrors.New("store unavailable")

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return stderrors.As(err, &re)
}

// Retry calls fn up to attempts times, doubling delay after each failure.
// Only errors wrapped with Retryable trigger another attempt.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// Connect opens a remote store with open, retrying while it fails with a
// STORAGE error. Other errors, such as a malformed URL, fail at once.
func Connect[S Store](ctx context.Context, backend string, attempts int, delay time.Duration, logger *log.Logger, open func(context.Context) (S, error)) (S, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var st S
	err := Retry(ctx, attempts, delay, func() error {
		s, err := open(ctx)
		if errors.Is(err, errors.ErrCodeStorage) {
			logger.Warn("session store unavailable, retrying", "backend", backend, "err", err)
			return Retryable(fmt.Errorf("%w: %w", ErrUnavailable, err))
		}
		st = s
		return err
	})
	return st, err
}

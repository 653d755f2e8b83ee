package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable matches every error marked with [Retryable]: the backend
// could not be reached, as opposed to rejecting the request.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff controls how failed backend calls are retried.
type Backoff struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// Delay is the wait before the second call. It doubles after each retry.
	Delay time.Duration
	// MaxDelay caps the wait between calls.
	MaxDelay time.Duration
}

// DefaultBackoff is used by the Redis and MongoDB backends.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 250 * time.Millisecond, MaxDelay: 2 * time.Second}

// retryableError marks a transient failure.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

func (e *retryableError) Is(target error) bool { return target == ErrUnavailable }

// Retryable marks err as transient so [Backoff.Do] retries it.
// Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Do calls fn until it succeeds, returns an error not marked retryable, or
// the attempts run out. The last error is returned; ctx ending during a wait
// returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if lastErr = fn(); lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return lastErr
}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}

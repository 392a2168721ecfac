package integrations

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// maxRetryDelay caps both the doubling backoff and server-provided Retry-After waits.
const maxRetryDelay = 30 * time.Second

// RetryableError marks a transport failure worth another attempt. After, when
// set, is the wait the server asked for (Retry-After on a 429 or 503).
type RetryableError struct {
	Err   error
	After time.Duration
}

// Retryable wraps err as a RetryableError. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err (or anything it wraps) is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retry runs fn up to attempts times. Only [RetryableError] failures are
// retried. The wait starts at delay and doubles, unless the error carries a
// server-requested wait, and never exceeds maxRetryDelay.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var re *RetryableError
		if !errors.As(err, &re) || i == attempts-1 {
			break
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(wait, maxRetryDelay)):
		}
		delay = min(delay*2, maxRetryDelay)
	}
	return lastErr
}

// retryAfter parses a Retry-After header given in seconds. HTTP-date values
// are ignored and fall back to the regular backoff.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

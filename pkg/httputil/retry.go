package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, 429 responses)
// with this type so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err (or anything it wraps) is a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. The wait starts at Delay and is multiplied by
// Multiplier after each failed attempt.
type Policy struct {
	Attempts   int
	Delay      time.Duration
	Multiplier float64

	// OnRetry, if set, is called before sleeping ahead of the next attempt.
	// attempt is 1-based and refers to the attempt that just failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultPolicy is a single attempt: no retry at all. Delay and Multiplier
// only matter once Attempts is raised.
var DefaultPolicy = Policy{Attempts: 1, Delay: time.Second, Multiplier: 2}

func (p Policy) normalized() Policy {
	p.Attempts = max(p.Attempts, 1)
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

// Retry executes fn according to p. It only retries errors wrapped with
// [RetryableError]; other errors are returned immediately. Returns the last
// error if all attempts fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, p Policy, fn func() error) error {
	p = p.normalized()
	delay := p.Delay
	var lastErr error

	for i := range p.Attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < p.Attempts-1 {
			if p.OnRetry != nil {
				p.OnRetry(i+1, lastErr, delay)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.Multiplier)
			}
		}
	}
	return lastErr
}

// RetryWithBackoff is a convenience wrapper around [Retry] with sensible
// defaults: 3 attempts with 1 second initial delay (doubling each retry).
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, Policy{Attempts: 3, Delay: time.Second, Multiplier: 2}, fn)
}

// Sleep blocks for d or until ctx is done, whichever comes first.
// A non-positive d returns immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

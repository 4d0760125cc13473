package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCancelled is returned when the run-wide context ends before an operation succeeds.
var ErrCancelled = errors.New("fetch cancelled")

// RetryPolicy bounds how often and how long an operation is attempted.
type RetryPolicy struct {
	// Retries is the number of extra attempts after the first one.
	Retries int
	// Backoff is multiplied by the attempt index before each retry.
	Backoff time.Duration
	// Timeout applies to each attempt separately.
	Timeout time.Duration
}

// Once returns the policy with retries disabled.
func (p RetryPolicy) Once() RetryPolicy {
	p.Retries = 0
	return p
}

// Retry runs op until it succeeds or the policy is exhausted. Every attempt gets its
// own timeout nested in ctx; when ctx itself ends, Retry stops at once and returns
// an error wrapping ErrCancelled, whether it was mid-attempt or mid-backoff.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, p.Backoff*time.Duration(attempt)); err != nil {
				return zero, err
			}
		}
		if ctx.Err() != nil {
			return zero, cancelled(ctx)
		}

		v, err := attemptOnce(ctx, p.Timeout, op)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return zero, cancelled(ctx)
		}
		lastErr = err
	}

	if p.Retries > 0 {
		return zero, fmt.Errorf("giving up after %d attempts: %w", p.Retries+1, lastErr)
	}
	return zero, lastErr
}

func attemptOnce[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := op(actx)
	if err != nil && errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return v, fmt.Errorf("timed out after %s: %w", timeout, context.DeadlineExceeded)
	}
	return v, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return cancelled(ctx)
	case <-t.C:
		return nil
	}
}

func cancelled(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrCancelled, cause)
	}
	return ErrCancelled
}

package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrConditionTimeout is returned by WaitForCondition when the deadline passes.
var ErrConditionTimeout = errors.New("condition not met")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Retry returns the wrapped error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff runs fn up to attempts times. The n-th retry waits
// base * 2^(n-1). The error from the last attempt is returned unchanged.
func RetryWithBackoff(ctx context.Context, attempts int, base time.Duration, fn func(context.Context) error) error {
	_, err := Retry(ctx, attempts, base, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Retry is RetryWithBackoff for actions that produce a value.
func Retry[T any](ctx context.Context, attempts int, base time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if err := sleep(ctx, Backoff(base, attempt)); err != nil {
			return zero, fmt.Errorf("retry interrupted after %d attempts: %w", attempt, lastErr)
		}
	}
	return zero, lastErr
}

// Backoff is the delay before retry number attempt (1-based).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return base << (attempt - 1)
}

// WaitForCondition polls cond every interval until it reports true, returns an
// error, or timeout elapses.
func WaitForCondition(ctx context.Context, timeout, interval time.Duration, cond func(context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w within %s", ErrConditionTimeout, timeout)
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package shared

import (
	"context"
	"errors"
	"time"
)

// RetryOnConflict runs fn up to attempts times, backing off linearly between
// attempts. Only ErrConcurrencyConflict is retried; every other error is
// returned immediately.
func RetryOnConflict(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(i+1)):
		}
	}
	return err
}

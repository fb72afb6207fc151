// Package retry provides bounded exponential-backoff retries for outbound
// calls. Only errors marked transient are retried; everything else is
// returned to the caller immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config bounds a retry loop.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

var errTransient = errors.New("transient failure")

// Transient marks err as a transient, retry-eligible failure.
func Transient(err error) error {
	return fmt.Errorf("%w: %w", errTransient, err)
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	return errors.Is(err, errTransient)
}

// Do runs fn up to cfg.Attempts times, sleeping with exponential backoff
// between attempts. fn is re-run only when its error is transient; the
// context cancels both the waiting and the remaining attempts.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	const op = "retry.Do"

	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.BaseDelay

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", op, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		err = fn(ctx)
		if err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}

package poll

import (
	"context"
	"errors"
	"time"
)

// Config controls polling behavior.
type Config struct {
	// MaxAttempts is the total number of calls to op.
	// If zero or negative, DefaultMaxAttempts is used.
	MaxAttempts int

	// Interval is the delay before the second attempt.
	// If zero, DefaultInterval is used.
	Interval time.Duration

	// Multiplier grows the delay after every attempt. Values below 1 keep
	// the interval fixed.
	Multiplier float64

	// MaxInterval caps the grown delay. Zero means no cap.
	MaxInterval time.Duration

	// ShouldRetry decides whether an error returned by op is polled through.
	// If nil, any error stops polling.
	ShouldRetry func(error) bool

	// Sleeper allows tests to override sleeping. If nil, a timer/select is
	// used so cancellation of ctx interrupts the wait.
	Sleeper func(time.Duration)
}

const (
	DefaultMaxAttempts = 60
	DefaultInterval    = 2 * time.Second
)

// ErrExhausted is returned when op never reported done.
var ErrExhausted = errors.New("poll: attempts exhausted")

// Until calls op until it reports done, returns an error ShouldRetry rejects,
// or MaxAttempts is reached. If ctx is canceled, the context error is
// returned immediately.
func Until(ctx context.Context, cfg Config, op func(attempt int) (bool, error)) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	delay := cfg.Interval
	if delay <= 0 {
		delay = DefaultInterval
	}

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(error) bool { return false }
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done, err := op(attempt)
		if err != nil {
			if !shouldRetry(err) {
				return err
			}
			lastErr = err
		} else if done {
			return nil
		} else {
			lastErr = nil
		}

		if attempt == maxAttempts-1 {
			break
		}

		if cfg.Sleeper != nil {
			cfg.Sleeper(delay)
		} else {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		delay = nextDelay(delay, cfg.Multiplier, cfg.MaxInterval)
	}

	if lastErr != nil {
		return errors.Join(ErrExhausted, lastErr)
	}
	return ErrExhausted
}

func nextDelay(delay time.Duration, multiplier float64, maxDelay time.Duration) time.Duration {
	if multiplier > 1 {
		delay = time.Duration(float64(delay) * multiplier)
	}
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

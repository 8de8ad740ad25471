package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptsExhausted is returned by Policy.Do when every attempt failed with
// a retryable error. The last error is wrapped alongside it.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Classifier reports whether err is safe to retry immediately.
type Classifier func(err error) bool

// Policy retries an operation a bounded number of times while its error is
// classified as retryable.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Retryable classifies errors. A nil classifier retries nothing.
	Retryable Classifier

	// Delay is slept between attempts. Zero retries immediately.
	Delay time.Duration

	// OnRetry, when set, is called before every repeated attempt.
	OnRetry func(attempt int, err error)
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. Non-retryable errors are returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if p.OnRetry != nil {
				p.OnRetry(attempt, err)
			}
			if werr := wait(ctx, p.Delay); werr != nil {
				return werr
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempts, err)
}

func wait(ctx context.Context, d time.Duration) error {
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

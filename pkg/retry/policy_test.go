package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errBusy = errors.New("busy")

func isBusy(err error) bool {
	return errors.Is(err, errBusy)
}

func TestPolicy_RetriesTransientOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	p := Policy{MaxAttempts: 2, Retryable: isBusy}
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errBusy
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestPolicy_ExhaustedWrapsLastError(t *testing.T) {
	t.Parallel()

	calls := 0
	var retried []int
	p := Policy{
		MaxAttempts: 2,
		Retryable:   isBusy,
		OnRetry: func(attempt int, err error) {
			retried = append(retried, attempt)
			require.ErrorIs(t, err, errBusy)
		},
	}
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errBusy
	})

	require.ErrorIs(t, err, ErrAttemptsExhausted)
	require.ErrorIs(t, err, errBusy)
	require.Equal(t, 2, calls)
	require.Equal(t, []int{2}, retried)
}

func TestPolicy_FatalErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	fatal := errors.New("syntax error")
	calls := 0
	p := Policy{MaxAttempts: 5, Retryable: isBusy}
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	require.Same(t, fatal, err)
	require.Equal(t, 1, calls)
}

func TestPolicy_ZeroValueRunsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Policy{}.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errBusy
	})

	require.ErrorIs(t, err, errBusy)
	require.NotErrorIs(t, err, ErrAttemptsExhausted)
	require.Equal(t, 1, calls)
}

func TestPolicy_DelayHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{MaxAttempts: 3, Retryable: isBusy, Delay: time.Hour}
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errBusy
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestDelayWithinJitterBounds(t *testing.T) {
	p := Policy{MaxAttempts: 10}

	expected := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		32 * time.Second, // capped
		32 * time.Second,
	}
	for attempt := 1; attempt <= len(expected); attempt++ {
		base := expected[attempt-1]
		lo := time.Duration(float64(base) * 0.75)
		hi := time.Duration(float64(base) * 1.25)
		for i := 0; i < 200; i++ {
			d := p.Delay(attempt)
			assert.GreaterOrEqual(t, d, lo, "attempt %d", attempt)
			assert.LessOrEqual(t, d, hi, "attempt %d", attempt)
		}
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	p := Policy{MaxAttempts: 3, Sleep: noSleep}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 2, Sleep: noSleep}

	calls := 0
	wantErr := errors.New("still broken")
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	}, nil)

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	terminal := errors.New("terminal")
	p := Policy{
		MaxAttempts: 5,
		Sleep:       noSleep,
		ShouldRetry: func(err error) bool { return !errors.Is(err, terminal) },
	}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return terminal
	}, nil)

	assert.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, calls)
}

func TestDoNotifiesBeforeEachRetry(t *testing.T) {
	p := Policy{MaxAttempts: 3, Sleep: noSleep}

	var attempts []int
	var delays []time.Duration
	err := p.Do(context.Background(), func(context.Context) error {
		return errors.New("transient")
	}, func(attempt int, _ error, delay time.Duration) {
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
	})

	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
	for i, d := range delays {
		assert.Positive(t, d, "delay %d", i)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 3, Sleep: noSleep}
	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("transient")
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDoTreatsZeroAttemptsAsOne(t *testing.T) {
	p := Policy{Sleep: noSleep}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("nope")
	}, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

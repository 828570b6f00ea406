package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), nil, func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), nil, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), nil, func(context.Context) error {
		calls++
		return errors.New("persistent")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	err := Do(context.Background(), fastConfig(5), func(err error) bool {
		return !errors.Is(err, permanent)
	}, func(context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastConfig(5), nil, func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SingleAttemptNeverSleeps(t *testing.T) {
	start := time.Now()
	_ = Do(context.Background(), Config{MaxAttempts: 1, InitialBackoff: time.Hour}, nil, func(context.Context) error {
		return errors.New("fail")
	})
	assert.Less(t, time.Since(start), time.Second)
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	cfg := Config{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
		Multiplier:     2.0,
	}

	assert.Equal(t, 100*time.Millisecond, backoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 300*time.Millisecond, backoff(2, cfg)) // capped
	assert.Equal(t, 300*time.Millisecond, backoff(8, cfg))
}

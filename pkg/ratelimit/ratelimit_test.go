package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the limiter without real waiting: sleeping advances the
// clock by the requested amount.
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newFakeLimiter(interval time.Duration) (*Limiter, *fakeClock) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	l := New(interval)
	l.now = func() time.Time { return clk.now }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		clk.slept = append(clk.slept, d)
		clk.now = clk.now.Add(d)
		return nil
	}
	return l, clk
}

func TestFirstAcquireDoesNotWait(t *testing.T) {
	l, clk := newFakeLimiter(time.Second)

	require.NoError(t, l.Acquire(context.Background()))
	assert.Empty(t, clk.slept)
}

func TestImmediateSecondAcquireWaitsFullInterval(t *testing.T) {
	l, clk := newFakeLimiter(time.Second)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))

	require.Len(t, clk.slept, 1)
	assert.Equal(t, time.Second, clk.slept[0])
}

func TestAcquireWaitsOnlyRemainder(t *testing.T) {
	l, clk := newFakeLimiter(time.Second)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	clk.now = clk.now.Add(400 * time.Millisecond)
	require.NoError(t, l.Acquire(ctx))

	require.Len(t, clk.slept, 1)
	assert.Equal(t, 600*time.Millisecond, clk.slept[0])
}

func TestAcquireAfterIntervalDoesNotWait(t *testing.T) {
	l, clk := newFakeLimiter(time.Second)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	clk.now = clk.now.Add(2 * time.Second)
	require.NoError(t, l.Acquire(ctx))

	assert.Empty(t, clk.slept)
}

func TestAcquireHonorsCancellation(t *testing.T) {
	l := New(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Acquire(ctx))
	cancel()

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

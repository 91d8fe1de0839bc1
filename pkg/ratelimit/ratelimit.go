package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MinAuthInterval is the default spacing between authentication calls to
// the identity endpoint. The endpoint throttles tighter spacing with 403s.
const MinAuthInterval = time.Second

// Limiter guarantees a minimum wall-clock spacing between successive calls
// to Acquire. It is cooperative: only callers that invoke Acquire are
// throttled, and concurrent callers serialize on the internal mutex.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Acquire suspends the caller until at least the configured interval has
// passed since the previous acquisition, then records the acquisition
// time. Calls are never dropped, only delayed.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.interval - l.now().Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	l.last = l.now()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package shopee

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyLimitReached is returned when the daily call quota is exhausted.
var ErrDailyLimitReached = errors.New("daily API quota reached")

// RateLimiter keeps the client inside the partner QPS limit and an optional
// daily call quota. The quota uses a rolling 24-hour window anchored at the
// first call of each window.
type RateLimiter struct {
	bucket   *rate.Limiter
	used     atomic.Int64
	maxDaily int64

	mu      sync.Mutex
	resetAt time.Time
	nowFunc func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time source for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) { r.nowFunc = f }
}

// NewRateLimiter creates a limiter allowing perSecond sustained calls with
// the given burst. maxDaily <= 0 disables the daily quota.
func NewRateLimiter(
	perSecond float64,
	burst int,
	maxDaily int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		bucket:   rate.NewLimiter(rate.Limit(perSecond), burst),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(24 * time.Hour)
	return r
}

// Wait blocks until the limiter admits the call or the context is canceled.
// Returns ErrDailyLimitReached once the quota is spent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.rollWindow()

	if r.maxDaily > 0 && r.used.Load() >= r.maxDaily {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, r.used.Load(), r.maxDaily)
	}

	if err := r.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	r.used.Add(1)
	return nil
}

// DailyCount returns the calls used in the current window.
func (r *RateLimiter) DailyCount() int64 {
	return r.used.Load()
}

// Remaining returns the calls left in the current window, or -1 when no
// daily quota is configured.
func (r *RateLimiter) Remaining() int64 {
	if r.maxDaily <= 0 {
		return -1
	}
	left := r.maxDaily - r.used.Load()
	if left < 0 {
		return 0
	}
	return left
}

func (r *RateLimiter) rollWindow() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.used.Store(0)
		r.resetAt = now.Add(24 * time.Hour)
	}
}

package shopee_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/shopee-partner/internal/shopee"
)

func TestRateLimiter_DailyQuota(t *testing.T) {
	t.Parallel()

	rl := shopee.NewRateLimiter(1000, 1000, 2)
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx))
	require.NoError(t, rl.Wait(ctx))

	err := rl.Wait(ctx)
	require.ErrorIs(t, err, shopee.ErrDailyLimitReached)

	assert.Equal(t, int64(2), rl.DailyCount())
	assert.Equal(t, int64(0), rl.Remaining())
}

func TestRateLimiter_NoQuotaConfigured(t *testing.T) {
	t.Parallel()

	rl := shopee.NewRateLimiter(1000, 1000, 0)
	ctx := context.Background()

	for range 10 {
		require.NoError(t, rl.Wait(ctx))
	}
	assert.Equal(t, int64(-1), rl.Remaining())
}

func TestRateLimiter_WindowRollsAfter24Hours(t *testing.T) {
	t.Parallel()

	now := time.Unix(1655290800, 0)
	var mu sync.Mutex
	current := now

	rl := shopee.NewRateLimiter(1000, 1000, 1,
		shopee.WithRateLimiterNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		}),
	)
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx))
	require.ErrorIs(t, rl.Wait(ctx), shopee.ErrDailyLimitReached)

	mu.Lock()
	current = now.Add(25 * time.Hour)
	mu.Unlock()

	require.NoError(t, rl.Wait(ctx))
	assert.Equal(t, int64(1), rl.DailyCount())
}

func TestRateLimiter_CanceledContext(t *testing.T) {
	t.Parallel()

	// Tiny refill rate with a drained burst so Wait would block.
	rl := shopee.NewRateLimiter(0.001, 1, 0)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, rl.Wait(ctx))
}

package shopee

import (
	"context"

	"github.com/ordersync/shopee-partner/internal/metrics"
)

// retry invokes fn once, then up to extra more times while it keeps
// failing, returning the first success or the last error. extra = 0 means
// exactly one attempt. Bounding the attempts keeps transient upstream
// failures (network blips, rate limiting) cheap without a retry storm.
//
// The context is consulted between attempts so a canceled fetch stops
// hammering the API.
func retry[T any](
	ctx context.Context,
	fn func(context.Context) (T, error),
	extra int,
) (T, error) {
	result, err := fn(ctx)
	for err != nil && extra > 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		metrics.RetryAttemptsTotal.Inc()
		extra--
		result, err = fn(ctx)
	}
	return result, err
}

package shopee

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/ordersync/shopee-partner/internal/metrics"
)

const (
	defaultPageSize       = 20
	defaultOptionalFields = "order_status"
)

// signOrderShop is the canonical base-string order for authenticated shop
// endpoints.
var signOrderShop = []string{
	"partner_id", "path", "timestamp", "access_token", "shop_id",
}

func (c *Client) fetchDefaults(opts *FetchOptions) (SearchOptions, int) {
	search := SearchOptions{
		TimeRangeField: TimeRangeCreate,
		Status:         OrderStatusReadyToShip,
		PageSize:       defaultPageSize,
		OptionalFields: defaultOptionalFields,
	}
	retries := c.retries
	if opts == nil {
		return search, retries
	}
	if opts.Search.TimeRangeField != "" {
		search.TimeRangeField = opts.Search.TimeRangeField
	}
	if opts.Search.Status != "" {
		search.Status = opts.Search.Status
	}
	if opts.Search.PageSize > 0 {
		search.PageSize = opts.Search.PageSize
	}
	if opts.Search.Cursor != "" {
		search.Cursor = opts.Search.Cursor
	}
	if opts.Search.OptionalFields != "" {
		search.OptionalFields = opts.Search.OptionalFields
	}
	if opts.Retries != nil {
		retries = *opts.Retries
	}
	return search, retries
}

// GetOrders fetches every order in [from, to] for a single window. The
// range must respect the API's per-call cap (15 days); use GetAllOrders or
// AllOrders for longer ranges.
//
// Each page goes through the retry budget. A transport failure that
// survives it ends the pagination loop and returns the orders accumulated
// so far with a nil error — partial results beat a hard failure here. An
// application-level error reported by the API aborts the window and is
// returned as *APIError.
func (c *Client) GetOrders(
	ctx context.Context,
	from, to time.Time,
	opts *FetchOptions,
) ([]Order, error) {
	search, retries := c.fetchDefaults(opts)
	strategy := c.newSearchStrategy(search)
	win := DateWindow{From: from, To: to}

	var orders []Order
	for more := true; more; {
		page, err := retry(ctx, func(ctx context.Context) (pageResult, error) {
			return c.fetchPage(ctx, strategy, win, search)
		}, retries)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				metrics.APIErrorsTotal.WithLabelValues(apiErr.Code).Inc()
				return nil, apiErr
			}
			c.log.Warn("order page failed, stopping window",
				"from", from, "to", to,
				"collected", len(orders), "err", err)
			return orders, nil
		}

		orders = append(orders, page.orders...)
		more = page.more
		metrics.PagesFetchedTotal.Inc()
		if c.verbose {
			c.log.Debug("order page fetched",
				"from", from, "to", to, "total", len(orders))
		}
	}

	metrics.OrdersFetchedTotal.Add(float64(len(orders)))
	return orders, nil
}

func (c *Client) fetchPage(
	ctx context.Context,
	strategy searchStrategy,
	win DateWindow,
	search SearchOptions,
) (pageResult, error) {
	path := c.commonPath + strategy.endpoint()
	token, _ := c.tokens.Get()

	payload := strategy.params(win, search)
	payload["access_token"] = token.AccessToken
	payload["shop_id"] = c.cfg.ShopID

	resp, err := c.Get(ctx, strategy.endpoint(), payload, &RequestOptions{
		SignFields: map[string]any{
			"partner_id":   c.cfg.PartnerID,
			"path":         path,
			"timestamp":    c.timestamp(),
			"access_token": token.AccessToken,
			"shop_id":      c.cfg.ShopID,
		},
		SignOrder: signOrderShop,
	})
	if err != nil {
		return pageResult{}, err
	}

	env, err := resp.envelope()
	if err != nil {
		return pageResult{}, err
	}
	if env.Error != "" {
		return pageResult{}, c.apiError(env, resp.Body)
	}
	return strategy.page(resp.Body)
}

// WindowError records a sub-window whose retrieval failed.
type WindowError struct {
	Window DateWindow
	Err    *APIError
}

// RangeResult is the combined outcome of a multi-window retrieval: every
// order fetched plus the windows that failed. A failed window never
// discards the other windows' orders.
type RangeResult struct {
	Orders []Order
	Failed []WindowError
}

// GetAllOrders splits [from, to] into API-sized windows and fetches them
// sequentially, one page at a time. Windows that fail with an API error are
// reported in the result's Failed list; only context cancellation aborts
// the whole retrieval.
func (c *Client) GetAllOrders(
	ctx context.Context,
	from, to time.Time,
	opts *FetchOptions,
) (*RangeResult, error) {
	result := &RangeResult{}
	for _, win := range SplitDateRange(from, to, c.windowDays) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		orders, err := c.GetOrders(ctx, win.From, win.To, opts)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				result.Failed = append(result.Failed, WindowError{
					Window: win,
					Err:    apiErr,
				})
				continue
			}
			return result, err
		}
		result.Orders = append(result.Orders, orders...)
	}
	return result, nil
}

// AllOrders returns a lazy, single-use sequence of every order in
// [from, to] in window order. Failed windows are logged and skipped; use
// GetAllOrders when the failures matter.
func (c *Client) AllOrders(
	ctx context.Context,
	from, to time.Time,
	opts *FetchOptions,
) iter.Seq[Order] {
	return func(yield func(Order) bool) {
		for _, win := range SplitDateRange(from, to, c.windowDays) {
			orders, err := c.GetOrders(ctx, win.From, win.To, opts)
			if err != nil {
				c.log.Warn("skipping failed order window",
					"from", win.From, "to", win.To, "err", err)
				continue
			}
			for _, o := range orders {
				if !yield(o) {
					return
				}
			}
		}
	}
}

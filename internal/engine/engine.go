// Package engine orchestrates periodic order synchronization: refreshing
// the partner token when it nears expiry, fetching all orders since the
// last run, and persisting them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ordersync/shopee-partner/internal/metrics"
	"github.com/ordersync/shopee-partner/internal/shopee"
	"github.com/ordersync/shopee-partner/internal/store"
)

const defaultLookback = 30 * 24 * time.Hour

// OrderSource is the slice of the shopee client the engine depends on.
type OrderSource interface {
	GetAllOrders(ctx context.Context, from, to time.Time, opts *shopee.FetchOptions) (*shopee.RangeResult, error)
	RefreshAccessToken(ctx context.Context) (shopee.TokenRecord, error)
	Credentials() (shopee.TokenRecord, bool)
}

// Engine runs one shop's order synchronization.
type Engine struct {
	source  OrderSource
	store   store.Store
	log     *slog.Logger
	tracer  trace.Tracer
	nowFunc func() time.Time

	lookback time.Duration
	fetch    *shopee.FetchOptions
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithLookback sets how far back the first sync reaches when the store has
// no sync state yet.
func WithLookback(d time.Duration) Option {
	return func(e *Engine) { e.lookback = d }
}

// WithFetchOptions sets the order search options used on every run.
func WithFetchOptions(opts *shopee.FetchOptions) Option {
	return func(e *Engine) { e.fetch = opts }
}

// WithNowFunc overrides the time source for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(e *Engine) { e.nowFunc = f }
}

// New creates an Engine with injected dependencies.
func New(source OrderSource, st store.Store, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		store:    st,
		log:      slog.Default(),
		tracer:   otel.Tracer("shopee-partner/engine"),
		nowFunc:  time.Now,
		lookback: defaultLookback,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunSync performs one full synchronization pass. Token refresh happens
// here, before fetching, because the client never refreshes on its own.
func (e *Engine) RunSync(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "engine.RunSync")
	defer span.End()

	start := time.Now()
	metrics.SyncRunsTotal.Inc()
	defer func() {
		metrics.SyncDuration.Observe(time.Since(start).Seconds())
	}()

	if err := e.ensureToken(ctx); err != nil {
		metrics.SyncErrorsTotal.Inc()
		return err
	}

	since, err := e.store.LastSync(ctx)
	if err != nil {
		e.log.Warn("reading sync state failed, using lookback", "err", err)
		since = time.Time{}
	}
	now := e.nowFunc()
	if since.IsZero() {
		since = now.Add(-e.lookback)
	}

	result, err := e.source.GetAllOrders(ctx, since, now, e.fetch)
	if err != nil {
		metrics.SyncErrorsTotal.Inc()
		return fmt.Errorf("fetching orders: %w", err)
	}
	for _, f := range result.Failed {
		e.log.Warn("order window failed",
			"from", f.Window.From, "to", f.Window.To, "err", f.Err)
	}
	span.SetAttributes(
		attribute.Int("orders.fetched", len(result.Orders)),
		attribute.Int("windows.failed", len(result.Failed)),
	)

	stored, err := e.store.UpsertOrders(ctx, result.Orders)
	if err != nil {
		metrics.SyncErrorsTotal.Inc()
		return fmt.Errorf("storing orders: %w", err)
	}
	metrics.OrdersStoredTotal.Add(float64(stored))

	if err := e.store.SetLastSync(ctx, now); err != nil {
		metrics.SyncErrorsTotal.Inc()
		return fmt.Errorf("recording sync state: %w", err)
	}
	metrics.LastSyncTimestamp.Set(float64(now.Unix()))

	e.log.Info("sync complete",
		"orders", len(result.Orders),
		"stored", stored,
		"failed_windows", len(result.Failed),
		"took", time.Since(start))
	return nil
}

func (e *Engine) ensureToken(ctx context.Context) error {
	tok, ok := e.source.Credentials()
	if !ok {
		return errors.New("no token stored; run token exchange first")
	}
	if tok.Valid(e.nowFunc()) {
		return nil
	}
	if _, err := e.source.RefreshAccessToken(ctx); err != nil {
		return fmt.Errorf("refreshing access token: %w", err)
	}
	return nil
}

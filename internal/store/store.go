// Package store persists fetched orders in PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/ordersync/shopee-partner/internal/shopee"
)

// StoredOrder is one persisted order row.
type StoredOrder struct {
	OrderSN     string
	Status      string
	Payload     []byte
	FirstSeenAt time.Time
	UpdatedAt   time.Time
}

// OrderQuery filters ListOrders. Zero values mean no filter.
type OrderQuery struct {
	Status string
	Limit  int
	Offset int
}

// Store is the persistence boundary used by the sync engine and the CLI.
type Store interface {
	// UpsertOrders inserts or updates orders by order_sn and returns the
	// number of rows written.
	UpsertOrders(ctx context.Context, orders []shopee.Order) (int, error)
	ListOrders(ctx context.Context, q OrderQuery) ([]StoredOrder, int, error)

	// LastSync returns the zero time when no sync has completed yet.
	LastSync(ctx context.Context) (time.Time, error)
	SetLastSync(ctx context.Context, at time.Time) error

	Ping(ctx context.Context) error
	Close()
}

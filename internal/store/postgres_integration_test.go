//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ordersync/shopee-partner/internal/shopee"
	"github.com/ordersync/shopee-partner/internal/store"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("shopee_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testOrder(sn string, status shopee.OrderStatus) shopee.Order {
	raw, _ := json.Marshal(map[string]any{
		"order_sn":     sn,
		"order_status": status,
		"region":       "VN",
	})
	return shopee.Order{OrderSN: sn, Status: status, Raw: raw}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_Migrate_Idempotent(t *testing.T) {
	s := setupPostgres(t)
	// Running migrations again must be a no-op.
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostgresStore_UpsertOrders(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("insert new orders", func(t *testing.T) {
		n, err := s.UpsertOrders(ctx, []shopee.Order{
			testOrder("insert-1", shopee.OrderStatusReadyToShip),
			testOrder("insert-2", shopee.OrderStatusUnpaid),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		n, err := s.UpsertOrders(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("upsert with changed status", func(t *testing.T) {
		_, err := s.UpsertOrders(ctx, []shopee.Order{
			testOrder("upsert-1", shopee.OrderStatusReadyToShip),
		})
		require.NoError(t, err)

		before, _, err := s.ListOrders(ctx, store.OrderQuery{Status: "READY_TO_SHIP"})
		require.NoError(t, err)
		var firstSeen time.Time
		for _, o := range before {
			if o.OrderSN == "upsert-1" {
				firstSeen = o.FirstSeenAt
			}
		}
		require.False(t, firstSeen.IsZero())

		_, err = s.UpsertOrders(ctx, []shopee.Order{
			testOrder("upsert-1", shopee.OrderStatusShipped),
		})
		require.NoError(t, err)

		after, _, err := s.ListOrders(ctx, store.OrderQuery{Status: "SHIPPED"})
		require.NoError(t, err)

		found := false
		for _, o := range after {
			if o.OrderSN == "upsert-1" {
				found = true
				// first_seen_at survives the update.
				assert.Equal(t, firstSeen, o.FirstSeenAt)
				assert.True(t, o.UpdatedAt.After(firstSeen) || o.UpdatedAt.Equal(firstSeen))
			}
		}
		assert.True(t, found)
	})
}

func TestPostgresStore_ListOrders(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	var batch []shopee.Order
	for i := range 5 {
		batch = append(batch, testOrder(
			fmt.Sprintf("list-%d", i), shopee.OrderStatusCompleted,
		))
	}
	_, err := s.UpsertOrders(ctx, batch)
	require.NoError(t, err)

	t.Run("no filters", func(t *testing.T) {
		orders, total, err := s.ListOrders(ctx, store.OrderQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, orders, 5)
		assert.NotEmpty(t, orders[0].Payload)
	})

	t.Run("status filter", func(t *testing.T) {
		_, total, err := s.ListOrders(ctx, store.OrderQuery{Status: "UNPAID"})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("limit and offset", func(t *testing.T) {
		orders, total, err := s.ListOrders(ctx, store.OrderQuery{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, orders, 1)
	})
}

func TestPostgresStore_SyncState(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	// No sync recorded yet.
	at, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	want := time.Date(2022, 6, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetLastSync(ctx, want))

	got, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))

	// A later sync overwrites the single row.
	later := want.Add(time.Hour)
	require.NoError(t, s.SetLastSync(ctx, later))

	got, err = s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(later))
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ordersync/shopee-partner/internal/shopee"
)

const defaultPoolSize = 10

// PostgresStore implements Store on a pgx connection pool. Methods needing
// live Postgres are covered by the integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a connection pool and verifies it with a ping.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// UpsertOrders writes the given orders in one batch, keyed by order_sn.
func (s *PostgresStore) UpsertOrders(
	ctx context.Context,
	orders []shopee.Order,
) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, o := range orders {
		batch.Queue(queryUpsertOrder, pgx.NamedArgs{
			"order_sn":     o.OrderSN,
			"order_status": string(o.Status),
			"payload":      []byte(o.Raw),
		})
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for range orders {
		if _, err := results.Exec(); err != nil {
			return written, fmt.Errorf("upserting order: %w", err)
		}
		written++
	}
	return written, nil
}

// ListOrders returns matching orders and the total count before paging.
func (s *PostgresStore) ListOrders(
	ctx context.Context,
	q OrderQuery,
) ([]StoredOrder, int, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	args := pgx.NamedArgs{
		"status": q.Status,
		"limit":  limit,
		"offset": q.Offset,
	}

	var total int
	if err := s.pool.QueryRow(ctx, queryCountOrders, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	rows, err := s.pool.Query(ctx, queryListOrders, args)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []StoredOrder
	for rows.Next() {
		var o StoredOrder
		if err := rows.Scan(
			&o.OrderSN, &o.Status, &o.Payload, &o.FirstSeenAt, &o.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating order rows: %w", err)
	}
	return orders, total, nil
}

// LastSync returns the time of the last completed sync, or the zero time.
func (s *PostgresStore) LastSync(ctx context.Context) (time.Time, error) {
	var at time.Time
	err := s.pool.QueryRow(ctx, queryGetLastSync).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading sync state: %w", err)
	}
	return at, nil
}

// SetLastSync records the completion time of a sync run.
func (s *PostgresStore) SetLastSync(ctx context.Context, at time.Time) error {
	if _, err := s.pool.Exec(ctx, querySetLastSync, pgx.NamedArgs{"at": at}); err != nil {
		return fmt.Errorf("writing sync state: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ordersync/shopee-partner/internal/store"
)

var (
	storedStatus string
	storedLimit  int
	storedOffset int
)

var storedCmd = &cobra.Command{
	Use:   "stored",
	Short: "List orders already mirrored into the database",
	RunE:  runStored,
}

func init() {
	storedCmd.Flags().StringVar(&storedStatus, "status", "", "order status filter")
	storedCmd.Flags().IntVar(&storedLimit, "limit", 50, "maximum rows to print")
	storedCmd.Flags().IntVar(&storedOffset, "offset", 0, "rows to skip")
	rootCmd.AddCommand(storedCmd)
}

func runStored(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	orders, total, err := st.ListOrders(ctx, store.OrderQuery{
		Status: storedStatus,
		Limit:  storedLimit,
		Offset: storedOffset,
	})
	if err != nil {
		return fmt.Errorf("listing orders: %w", err)
	}

	out := struct {
		Total  int               `json:"total"`
		Orders []json.RawMessage `json:"orders"`
	}{Total: total}
	for _, o := range orders {
		out.Orders = append(out.Orders, json.RawMessage(o.Payload))
	}
	return printJSON(out)
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ordersync/shopee-partner/internal/shopee"
)

var (
	ordersFrom     string
	ordersTo       string
	ordersStatus   string
	ordersPageSize int
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Fetch orders for a date range",
	Long: "Fetches every order between --from and --to, splitting the range\n" +
		"into API-sized windows, and prints them as JSON. Windows that fail\n" +
		"are reported on stderr without discarding the rest.",
	RunE: runOrders,
}

func init() {
	ordersCmd.Flags().StringVar(&ordersFrom, "from", "", "start date (YYYY-MM-DD, required)")
	ordersCmd.Flags().StringVar(&ordersTo, "to", "", "end date (YYYY-MM-DD, default today)")
	ordersCmd.Flags().StringVar(&ordersStatus, "status", "", "order status filter")
	ordersCmd.Flags().IntVar(&ordersPageSize, "page-size", 0, "orders per page")
	_ = ordersCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(ordersCmd)
}

func runOrders(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	client, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level: parseLogLevel(cfg.Logging.Level),
	})

	from, err := time.Parse("2006-01-02", ordersFrom)
	if err != nil {
		return fmt.Errorf("parsing --from: %w", err)
	}
	to := time.Now()
	if ordersTo != "" {
		if to, err = time.Parse("2006-01-02", ordersTo); err != nil {
			return fmt.Errorf("parsing --to: %w", err)
		}
	}

	opts := &shopee.FetchOptions{
		Search: shopee.SearchOptions{
			Status:   shopee.OrderStatus(ordersStatus),
			PageSize: ordersPageSize,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := client.GetAllOrders(ctx, from, to, opts)
	if err != nil {
		return fmt.Errorf("fetching orders: %w", err)
	}
	for _, f := range result.Failed {
		logger.Warn("window failed",
			"from", f.Window.From.Format("2006-01-02"),
			"to", f.Window.To.Format("2006-01-02"),
			"err", f.Err)
	}

	return printJSON(result.Orders)
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	fmt.Println(out.String())
	return nil
}

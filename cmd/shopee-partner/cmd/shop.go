package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Print the linked shop's profile",
	RunE:  runShop,
}

func init() {
	rootCmd.AddCommand(shopCmd)
}

func runShop(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	client, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := client.GetShopInfo(ctx)
	if err != nil {
		return fmt.Errorf("fetching shop info: %w", err)
	}
	return printJSON(info)
}

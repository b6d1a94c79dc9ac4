package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the shop access token",
}

var tokenExchangeCmd = &cobra.Command{
	Use:   "exchange <code>",
	Short: "Exchange an authorization code for a token pair",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenExchange,
}

var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the stored token pair",
	RunE:  runTokenRefresh,
}

func init() {
	tokenCmd.AddCommand(tokenExchangeCmd)
	tokenCmd.AddCommand(tokenRefreshCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenExchange(_ *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rec, err := client.GetAccessToken(ctx, args[0])
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	logger.Info("token stored", "file", cfg.TokenFile, "expires", rec.ExpireAt)
	return nil
}

func runTokenRefresh(_ *cobra.Command, _ []string) error {
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rec, err := client.RefreshAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}

	logger.Info("token refreshed", "file", cfg.TokenFile, "expires", rec.ExpireAt)
	return nil
}

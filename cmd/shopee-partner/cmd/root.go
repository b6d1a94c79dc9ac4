// Package cmd implements the CLI commands for shopee-partner.
package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ordersync/shopee-partner/internal/config"
	"github.com/ordersync/shopee-partner/internal/shopee"
	"github.com/ordersync/shopee-partner/pkg/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "shopee-partner",
	Short: "Sync and inspect Shopee shop orders",
	Long: "shopee-partner talks to the Shopee Partner API for a single shop:\n" +
		"it handles shop authorization, token exchange and refresh, fetches\n" +
		"orders over arbitrary date ranges, and runs a sync daemon that\n" +
		"mirrors orders into PostgreSQL.",
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(versionCommand())
}

func initEnv() {
	// Credentials can come from the environment instead of the config file,
	// e.g. SHOPEE_PARTNER_KEY.
	viper.SetEnvPrefix("SHOPEE")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if v := viper.GetInt64("partner_id"); v != 0 {
		cfg.Shopee.PartnerID = v
	}
	if v := viper.GetString("partner_key"); v != "" {
		cfg.Shopee.PartnerKey = v
	}
	if v := viper.GetInt64("shop_id"); v != 0 {
		cfg.Shopee.ShopID = v
	}
	return cfg, nil
}

// buildClient assembles a shopee.Client from configuration, with the token
// pair persisted to the configured token file.
func buildClient(cfg *config.Config) (*shopee.Client, error) {
	opts := []shopee.Option{
		shopee.WithLogger(logger.New(cfg.Logging.Level, cfg.Logging.Format)),
		shopee.WithTokenStore(newFileTokenStore(cfg.TokenFile)),
		shopee.WithWindowDays(cfg.Shopee.WindowDays),
		shopee.WithExpiryMargin(cfg.Shopee.TokenExpiryMargin),
		shopee.WithRateLimiter(shopee.NewRateLimiter(
			cfg.Shopee.RateLimit.PerSecond,
			cfg.Shopee.RateLimit.Burst,
			cfg.Shopee.RateLimit.DailyLimit,
		)),
	}
	if cfg.Shopee.Retries != nil {
		opts = append(opts, shopee.WithRetryCount(*cfg.Shopee.Retries))
	}
	if cfg.Shopee.Verbose {
		opts = append(opts, shopee.WithVerboseLogging())
	}

	return shopee.New(shopee.Config{
		PartnerID:   cfg.Shopee.PartnerID,
		PartnerKey:  cfg.Shopee.PartnerKey,
		ShopID:      cfg.Shopee.ShopID,
		APIVersion:  cfg.Shopee.APIVersion,
		Environment: shopee.Environment(cfg.Shopee.Environment),
		RedirectURI: cfg.Shopee.RedirectURI,
	}, opts...)
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

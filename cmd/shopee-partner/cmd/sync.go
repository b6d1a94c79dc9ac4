package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ordersync/shopee-partner/internal/engine"
	"github.com/ordersync/shopee-partner/internal/store"
	"github.com/ordersync/shopee-partner/pkg/logger"
	"github.com/ordersync/shopee-partner/pkg/telemetry"
)

var syncOnce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the order sync daemon",
	Long: "Mirrors the shop's orders into PostgreSQL on a schedule, refreshing\n" +
		"the access token as needed, and serves health and metrics endpoints.",
	RunE: runSyncCmd,
}

func init() {
	syncCmd.Flags().BoolVar(&syncOnce, "once", false, "run a single sync and exit")
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cliLog := log.NewWithOptions(os.Stderr, log.Options{
		Level: parseLogLevel(cfg.Logging.Level),
	})
	slogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.Setup(
			ctx, "shopee-partner", cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio,
		)
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				cliLog.Error("tracing shutdown failed", "err", err)
			}
		}()
	}

	client, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	eng := engine.New(client, st,
		engine.WithLogger(slogger),
		engine.WithLookback(cfg.Sync.Lookback),
	)

	if syncOnce {
		return eng.RunSync(ctx)
	}

	sched, err := engine.NewScheduler(eng, cfg.Sync.Interval, slogger)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Readiness means the database answers.
	e.GET("/readyz", func(c echo.Context) error {
		if err := st.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	cliLog.Info("starting sync daemon", "addr", addr, "interval", cfg.Sync.Interval)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cliLog.Error("server error", "err", err)
		}
	}()

	sched.Start()

	// Run the first sync immediately rather than waiting a full interval.
	go func() {
		if err := eng.RunSync(ctx); err != nil {
			slogger.Error("initial sync failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cliLog.Info("shutting down")

	<-sched.Stop().Done()

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	cliLog.Info("stopped")
	return nil
}

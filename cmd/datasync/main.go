// Package main provides the market data sync daemon. It refreshes the
// on-disk candle cache on a cron schedule and exposes health and metrics
// endpoints.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/crypto-backtester/internal/config"
	"github.com/yourusername/crypto-backtester/internal/health"
	"github.com/yourusername/crypto-backtester/internal/logger"
	"github.com/yourusername/crypto-backtester/internal/metrics"
	"github.com/yourusername/crypto-backtester/internal/scheduler"
	"github.com/yourusername/crypto-backtester/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	runOnce    bool
	log        *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&runOnce, "once", false, "Refresh once and exit instead of running the scheduler")
}

var rootCmd = &cobra.Command{
	Use:   "datasync",
	Short: "Keep the local market data cache in sync with the exchange",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The daemon only syncs market data, so it runs off defaults plus
		// whatever the file provides and does not require strategy config.
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Data.Symbol == "" {
			return fmt.Errorf("data.symbol must be set")
		}
		log = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
		"symbol":  cfg.SymbolPair(),
	}).Info("Starting data sync")

	candleSvc, err := service.NewCandleService(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build data service: %w", err)
	}

	if runOnce {
		refreshCtx, cancel := context.WithTimeout(ctx, 15*time.Minute)
		defer cancel()
		candles, err := candleSvc.Refresh(refreshCtx)
		if err != nil {
			return err
		}
		metrics.UpdateCachedCandles(cfg.SymbolPair(), cfg.Data.Interval, float64(len(candles)))
		return nil
	}

	schedule := cfg.Data.RefreshSchedule
	if schedule == "" {
		schedule = "0 1 * * *" // daily, after the previous UTC day closes
	}

	sched := scheduler.NewScheduler(candleSvc, log)
	if err := sched.ScheduleRefresh(schedule); err != nil {
		return err
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: "datasync",
		Version:     Version,
		Logger:      log,
	})
	healthServer.RegisterCheck("scheduler", func(ctx context.Context) error {
		if !sched.IsRunning() {
			return fmt.Errorf("scheduler not running")
		}
		return nil
	})
	if err := healthServer.Start(ctx); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx)
	}

	if err := sched.Start(); err != nil {
		return err
	}
	healthServer.SetReady(true)
	log.WithField("next_run", sched.GetNextRun().Format(time.RFC3339)).Info("Data sync running")

	<-ctx.Done()
	log.Info("Shutting down")
	return sched.Stop()
}

func startMetricsServer(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
}

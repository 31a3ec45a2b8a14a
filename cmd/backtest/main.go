// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/crypto-backtester/internal/config"
	"github.com/yourusername/crypto-backtester/internal/database"
	"github.com/yourusername/crypto-backtester/internal/logger"
	"github.com/yourusername/crypto-backtester/internal/repository"
	"github.com/yourusername/crypto-backtester/internal/service"
	"github.com/yourusername/crypto-backtester/internal/sizer"
	"github.com/yourusername/crypto-backtester/internal/strategy"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile   string
	strategyName string
	log          *logrus.Logger
	cfg          *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "Run only the named strategy")
	rootCmd.AddCommand(listCmd)
}

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run configured trading strategies against historical market data",
	Long: `Loads historical OHLCV candles, generates signals and position sizes for
each configured strategy, simulates execution bar by bar and reports the
resulting equity curve, trade log and performance metrics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktests(cmd.Context())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available strategy and position sizer types",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Strategies:")
		for _, name := range strategy.Types() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("Position sizers:")
		for _, name := range sizer.Types() {
			fmt.Printf("  %s\n", name)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBacktests(ctx context.Context) error {
	if strategyName != "" {
		filtered := filterStrategies(cfg.Strategies, strategyName)
		if len(filtered) == 0 {
			return fmt.Errorf("strategy %q not found in configuration", strategyName)
		}
		cfg.Strategies = filtered
	}

	log.WithFields(logrus.Fields{
		"version":    Version,
		"commit":     GitCommit,
		"symbol":     cfg.SymbolPair(),
		"strategies": len(cfg.Strategies),
	}).Info("Starting backtest run")

	candleSvc, err := service.NewCandleService(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build data service: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()
	candles, err := candleSvc.GetCandles(fetchCtx)
	if err != nil {
		return fmt.Errorf("failed to load market data: %w", err)
	}

	repos, cleanup, err := setupPersistence(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := service.NewRunner(cfg, repos, log)
	outcomes, err := runner.RunAll(ctx, candles)
	if err != nil {
		return err
	}

	failures := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures++
			log.WithError(outcome.Err).WithField("strategy", outcome.StrategyName).Error("Backtest failed")
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d backtests failed", failures, len(outcomes))
	}
	return nil
}

// setupPersistence connects to PostgreSQL only when result persistence is
// enabled. The returned cleanup is always safe to call.
func setupPersistence(ctx context.Context) (*repository.Repositories, func(), error) {
	if !cfg.Backtest.PersistResults {
		return nil, func() {}, nil
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.NewDB(connCtx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.EnsureSchema(connCtx); err != nil {
		db.Close()
		return nil, nil, err
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return repos, db.Close, nil
}

func filterStrategies(strategies []config.StrategyConfig, name string) []config.StrategyConfig {
	var filtered []config.StrategyConfig
	for _, sc := range strategies {
		if sc.Name == name {
			filtered = append(filtered, sc)
		}
	}
	return filtered
}

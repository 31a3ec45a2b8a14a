// Package service orchestrates full backtest runs from configuration to
// reports: data loading, signal generation, sizing, simulation, analysis
// and optional persistence.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/crypto-backtester/internal/analysis"
	"github.com/yourusername/crypto-backtester/internal/backtest"
	"github.com/yourusername/crypto-backtester/internal/config"
	"github.com/yourusername/crypto-backtester/internal/logger"
	"github.com/yourusername/crypto-backtester/internal/metrics"
	"github.com/yourusername/crypto-backtester/internal/models"
	"github.com/yourusername/crypto-backtester/internal/repository"
	"github.com/yourusername/crypto-backtester/internal/sizer"
	"github.com/yourusername/crypto-backtester/internal/strategy"
)

// RunOutcome pairs one strategy's run with its derived metrics
type RunOutcome struct {
	StrategyName string
	Result       *backtest.Result
	Metrics      analysis.Metrics
	Resample     *analysis.ResampleResult
	Err          error
}

// Runner executes every configured strategy against one candle series
type Runner struct {
	cfg    *config.Config
	repos  *repository.Repositories // nil disables persistence
	logger *logrus.Logger
	audit  *logger.AuditLogger
}

// NewRunner creates a backtest runner. repos may be nil when persistence
// is disabled.
func NewRunner(cfg *config.Config, repos *repository.Repositories, log *logrus.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		repos:  repos,
		logger: log,
		audit:  logger.NewAuditLogger(log),
	}
}

// RunAll backtests every configured strategy against the candle series.
// Strategies run concurrently when parallel_runs is set; each run owns its
// own state so results are identical either way.
func (r *Runner) RunAll(ctx context.Context, candles []models.Candle) ([]RunOutcome, error) {
	if len(r.cfg.Strategies) == 0 {
		return nil, fmt.Errorf("no strategies configured")
	}

	outcomes := make([]RunOutcome, len(r.cfg.Strategies))

	if r.cfg.Backtest.ParallelRuns {
		var wg sync.WaitGroup
		for i, sc := range r.cfg.Strategies {
			wg.Add(1)
			go func(i int, sc config.StrategyConfig) {
				defer wg.Done()
				outcomes[i] = r.runOne(ctx, sc, candles)
			}(i, sc)
		}
		wg.Wait()
	} else {
		for i, sc := range r.cfg.Strategies {
			outcomes[i] = r.runOne(ctx, sc, candles)
		}
	}

	return outcomes, nil
}

// runOne executes a single strategy end to end. Failures are carried in the
// outcome rather than aborting sibling runs.
func (r *Runner) runOne(ctx context.Context, sc config.StrategyConfig, candles []models.Candle) RunOutcome {
	start := time.Now()
	outcome := RunOutcome{StrategyName: sc.Name}

	result, err := r.executeStrategy(sc, candles)
	if err != nil {
		metrics.RecordBacktestRun(sc.Name, "failure", time.Since(start).Seconds())
		r.audit.LogRunAborted(sc.Name, "run failed", err)
		outcome.Err = err
		return outcome
	}

	runMetrics := analysis.CalculateMetrics(result, r.cfg.Backtest.RiskFreeRate)
	outcome.Result = result
	outcome.Metrics = runMetrics

	if r.cfg.Backtest.ResampleIterations > 0 && len(result.Trades) > 0 {
		resampled := analysis.ResampleTrades(result.Trades, analysis.ResampleConfig{
			Iterations:     r.cfg.Backtest.ResampleIterations,
			InitialCapital: result.InitialCapital,
		})
		outcome.Resample = &resampled
	}

	metrics.RecordBacktestRun(sc.Name, "success", time.Since(start).Seconds())
	metrics.UpdateFinalCapital(sc.Name, runMetrics.FinalCapital)
	metrics.TradesPerRun.WithLabelValues(sc.Name).Observe(float64(len(result.Trades)))
	runID := result.RunID.String()
	for _, trade := range result.Trades {
		metrics.RecordTrade(sc.Name, string(trade.ExitReason))
		r.audit.LogPositionOpened(runID, sc.Name, trade.EntryDate, trade.EntryPrice,
			trade.Quantity, trade.EntryPrice*trade.Quantity)
		r.audit.LogPositionClosed(runID, sc.Name, trade.ExitDate, trade.ExitPrice,
			trade.CashProfit, string(trade.ExitReason))
	}

	r.audit.LogRunCompleted(runID, sc.Name, len(result.Trades),
		result.InitialCapital, result.FinalEquity, result.OpenPosition != nil)

	if err := r.writeReports(outcome); err != nil {
		r.logger.WithError(err).WithField("strategy", sc.Name).Warn("Failed to write reports")
	}

	if r.cfg.Backtest.PersistResults && r.repos != nil {
		if err := r.persist(ctx, outcome); err != nil {
			r.logger.WithError(err).WithField("strategy", sc.Name).Warn("Failed to persist run")
		}
	}

	return outcome
}

// executeStrategy builds the strategy, sizer and engine for one config entry
// and runs the simulation.
func (r *Runner) executeStrategy(sc config.StrategyConfig, candles []models.Candle) (*backtest.Result, error) {
	signalSource, err := strategy.New(sc.Type, sc.Params)
	if err != nil {
		return nil, err
	}

	positionSizer, err := sizer.New(sc.PositionSizer.Type, sc.PositionSizer.Params)
	if err != nil {
		return nil, err
	}

	signals, err := signalSource.Generate(candles)
	if err != nil {
		return nil, err
	}

	sizes, err := positionSizer.Sizes(candles, signals)
	if err != nil {
		return nil, err
	}

	engineCfg, err := backtest.FromConfig(&r.cfg.Backtest, sc.RiskOverrides)
	if err != nil {
		return nil, err
	}

	engine, err := backtest.NewEngine(engineCfg, r.logger)
	if err != nil {
		return nil, err
	}
	return engine.Run(backtest.Input{
		StrategyName: sc.Name,
		Symbol:       r.cfg.SymbolPair(),
		Candles:      candles,
		Signals:      signals,
		Sizes:        sizes,
	})
}

func (r *Runner) writeReports(outcome RunOutcome) error {
	outputDir := filepath.Join(r.cfg.Backtest.OutputPath, outcome.StrategyName)
	result := outcome.Result

	fmt.Print(analysis.GenerateConsoleReport(result, outcome.Metrics))

	if err := analysis.WriteEquityCurveCSV(result.EquityCurve, filepath.Join(outputDir, "equity_curve.csv")); err != nil {
		return err
	}
	if err := analysis.WriteTradeLogCSV(result, filepath.Join(outputDir, "trades.csv")); err != nil {
		return err
	}
	if err := analysis.WriteMetricsCSV(outcome.Metrics, filepath.Join(outputDir, "metrics.csv")); err != nil {
		return err
	}

	export := analysis.NewRunExport(result, outcome.Metrics, outcome.Resample)
	return export.WriteJSON(filepath.Join(outputDir, "results.json"))
}

func (r *Runner) persist(ctx context.Context, outcome RunOutcome) error {
	export := analysis.NewRunExport(outcome.Result, outcome.Metrics, outcome.Resample)

	if err := r.repos.BacktestResult.SaveResult(ctx, export.ToBacktestResult()); err != nil {
		return err
	}
	if err := r.repos.Trade.SaveTrades(ctx, outcome.Result.Trades); err != nil {
		return err
	}
	return r.repos.EquityCurve.SaveCurve(ctx, outcome.Result.RunID, outcome.Result.EquityCurve)
}

package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/crypto-backtester/internal/backtest"
	"github.com/yourusername/crypto-backtester/internal/models"
)

// RunExport bundles everything a single run produced into one document
type RunExport struct {
	RunID        uuid.UUID               `json:"run_id"`
	StrategyName string                  `json:"strategy_name"`
	Symbol       string                  `json:"symbol"`
	GeneratedAt  time.Time               `json:"generated_at"`
	Metrics      Metrics                 `json:"metrics"`
	Risk         backtest.RiskParameters `json:"risk"`
	EquityCurve  backtest.EquityCurve    `json:"equity_curve"`
	Trades       []models.Trade          `json:"trades"`
	Resample     *ResampleResult         `json:"resample,omitempty"`
}

// NewRunExport assembles the export document for a completed run
func NewRunExport(result *backtest.Result, metrics Metrics, resample *ResampleResult) RunExport {
	return RunExport{
		RunID:        result.RunID,
		StrategyName: result.StrategyName,
		Symbol:       result.Symbol,
		GeneratedAt:  time.Now().UTC(),
		Metrics:      metrics,
		Risk:         result.Risk,
		EquityCurve:  result.EquityCurve,
		Trades:       result.Trades,
		Resample:     resample,
	}
}

// WriteJSON writes the export document to disk
func (e RunExport) WriteJSON(outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// ToBacktestResult converts the export into the persistence model
func (e RunExport) ToBacktestResult() *models.BacktestResult {
	pf := e.Metrics.ProfitFactor
	if math.IsInf(pf, 1) {
		pf = 0
	}
	return &models.BacktestResult{
		ID:             e.RunID,
		StrategyName:   e.StrategyName,
		Symbol:         e.Symbol,
		RunDate:        e.GeneratedAt,
		StartDate:      e.Metrics.StartDate,
		EndDate:        e.Metrics.EndDate,
		InitialCapital: e.Metrics.InitialCapital,
		FinalCapital:   e.Metrics.FinalCapital,
		TotalReturn:    e.Metrics.TotalReturn,
		CAGR:           e.Metrics.CAGR,
		SharpeRatio:    e.Metrics.SharpeRatio,
		MaxDrawdown:    e.Metrics.MaxDrawdown,
		TotalTrades:    e.Metrics.TotalTrades,
		WinRate:        e.Metrics.WinRate,
		ProfitFactor:   pf,
		StopLossPct:    e.Risk.StopLossPct,
		TakeProfitPct:  e.Risk.TakeProfitPct,
		FeePct:         e.Risk.TransactionFeePct,
		FullResults:    mustMarshalJSON(e),
		CreatedAt:      time.Now().UTC(),
	}
}

func mustMarshalJSON(value any) json.RawMessage {
	data, _ := json.Marshal(value)
	return data
}

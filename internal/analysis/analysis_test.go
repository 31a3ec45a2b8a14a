package analysis

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/crypto-backtester/internal/backtest"
	"github.com/yourusername/crypto-backtester/internal/models"
)

func testResult() *backtest.Result {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := backtest.EquityCurve{
		{Date: start, TotalCapital: 10000},
		{Date: start.AddDate(0, 0, 1), TotalCapital: 10400},
		{Date: start.AddDate(0, 0, 2), TotalCapital: 10100},
		{Date: start.AddDate(0, 0, 3), TotalCapital: 11000},
	}
	trades := []models.Trade{
		{ID: uuid.New(), EntryDate: start, ExitDate: start.AddDate(0, 0, 1), CashProfit: 400, ExitReason: models.ExitReasonTakeProfit},
		{ID: uuid.New(), EntryDate: start.AddDate(0, 0, 1), ExitDate: start.AddDate(0, 0, 2), CashProfit: -300, ExitReason: models.ExitReasonStopLoss},
		{ID: uuid.New(), EntryDate: start.AddDate(0, 0, 2), ExitDate: start.AddDate(0, 0, 3), CashProfit: 900, ExitReason: models.ExitReasonSignal},
	}
	return &backtest.Result{
		RunID:          uuid.New(),
		StrategyName:   "test",
		Symbol:         "BTCUSDT",
		InitialCapital: 10000,
		FinalCash:      11000,
		FinalEquity:    11000,
		EquityCurve:    curve,
		Trades:         trades,
		Risk:           backtest.RiskParameters{StopLossPct: 0.05, TakeProfitPct: 0.1, TransactionFeePct: 0.001},
	}
}

func TestCalculateMetrics(t *testing.T) {
	metrics := CalculateMetrics(testResult(), 0)

	assert.Equal(t, 10000.0, metrics.InitialCapital)
	assert.Equal(t, 11000.0, metrics.FinalCapital)
	assert.InDelta(t, 0.10, metrics.TotalReturn, 1e-9)
	assert.Equal(t, 4, metrics.TradingDays)

	assert.Equal(t, 3, metrics.TotalTrades)
	assert.Equal(t, 2, metrics.WinningTrades)
	assert.Equal(t, 1, metrics.LosingTrades)
	assert.InDelta(t, 2.0/3.0, metrics.WinRate, 1e-9)
	assert.InDelta(t, 1300.0/300.0, metrics.ProfitFactor, 1e-9)
	assert.InDelta(t, 1000.0/3.0, metrics.Expectancy, 1e-9)
	assert.InDelta(t, 650.0, metrics.AverageWin, 1e-9)
	assert.InDelta(t, -300.0, metrics.AverageLoss, 1e-9)
	assert.Equal(t, 900.0, metrics.LargestWin)
	assert.Equal(t, -300.0, metrics.LargestLoss)

	// Peak 10400 to trough 10100.
	assert.InDelta(t, 300.0/10400.0, metrics.MaxDrawdown, 1e-9)
	assert.Greater(t, metrics.CAGR, 0.0)
}

func TestCalculateMetricsEmptyCurve(t *testing.T) {
	metrics := CalculateMetrics(&backtest.Result{InitialCapital: 10000}, 0)
	assert.Equal(t, 10000.0, metrics.InitialCapital)
	assert.Equal(t, 0.0, metrics.FinalCapital)
	assert.Equal(t, 0, metrics.TotalTrades)
}

func TestProfitFactorNoLosses(t *testing.T) {
	trades := []models.Trade{{CashProfit: 100}, {CashProfit: 50}}
	assert.True(t, math.IsInf(calculateProfitFactor(trades), 1))
	assert.Equal(t, 0.0, calculateProfitFactor(nil))
}

func TestCAGROneYearDouble(t *testing.T) {
	cagr := calculateCAGR(10000, 20000, 366) // 366 days spans one leap year
	assert.InDelta(t, 1.0, cagr, 0.01)
}

func TestResampleTradesDeterministic(t *testing.T) {
	trades := testResult().Trades
	cfg := ResampleConfig{Iterations: 500, Seed: 42, InitialCapital: 10000}

	first := ResampleTrades(trades, cfg)
	second := ResampleTrades(trades, cfg)

	assert.Equal(t, first, second)
	assert.Equal(t, 500, first.Iterations)
	assert.Greater(t, first.MeanFinalCapital, 0.0)
	assert.GreaterOrEqual(t, first.ProbabilityOfProfit, 0.0)
	assert.LessOrEqual(t, first.ProbabilityOfProfit, 1.0)
	assert.Contains(t, first.ConfidenceIntervals, "95%")
}

func TestResampleTradesEmpty(t *testing.T) {
	result := ResampleTrades(nil, ResampleConfig{Iterations: 100, InitialCapital: 10000})
	assert.Equal(t, 0.0, result.MeanFinalCapital)
}

func TestGenerateConsoleReport(t *testing.T) {
	result := testResult()
	report := GenerateConsoleReport(result, CalculateMetrics(result, 0))

	assert.Contains(t, report, "test (BTCUSDT)")
	assert.Contains(t, report, "Final Capital: 11000.00")
	assert.Contains(t, report, "Total Return: 10.00%")
	assert.Contains(t, report, "Total Trades: 3")
}

func TestWriteTradeLogCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "trades.csv")

	require.NoError(t, WriteTradeLogCSV(testResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "entry_date,exit_date,entry_price,exit_price,quantity,cash_profit,exit_reason", lines[0])
	assert.Contains(t, lines[1], "Take-profit triggered")
}

func TestRunExportRoundTrip(t *testing.T) {
	result := testResult()
	metrics := CalculateMetrics(result, 0)
	export := NewRunExport(result, metrics, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	require.NoError(t, export.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"strategy_name": "test"`)

	model := export.ToBacktestResult()
	assert.Equal(t, result.RunID, model.ID)
	assert.Equal(t, "test", model.StrategyName)
	assert.Equal(t, 3, model.TotalTrades)
	assert.Equal(t, 0.05, model.StopLossPct)
	assert.NotEmpty(t, model.FullResults)
}

func TestWriteJSONRequiresPath(t *testing.T) {
	export := NewRunExport(testResult(), Metrics{}, nil)
	require.Error(t, export.WriteJSON(""))
}

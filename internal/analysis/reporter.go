package analysis

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/crypto-backtester/internal/backtest"
)

// GenerateConsoleReport formats run metrics for terminal output
func GenerateConsoleReport(result *backtest.Result, metrics Metrics) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Backtest Report: %s (%s)\n", result.StrategyName, result.Symbol))
	builder.WriteString("========================================\n")
	builder.WriteString(fmt.Sprintf("Period: %s to %s (%d days)\n",
		metrics.StartDate.Format("2006-01-02"), metrics.EndDate.Format("2006-01-02"), metrics.TradingDays))
	builder.WriteString(fmt.Sprintf("Initial Capital: %.2f\n", metrics.InitialCapital))
	builder.WriteString(fmt.Sprintf("Final Capital: %.2f\n", metrics.FinalCapital))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", metrics.TotalReturn*100))
	builder.WriteString(fmt.Sprintf("CAGR: %.2f%%\n", metrics.CAGR*100))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", metrics.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Sortino Ratio: %.2f\n", metrics.SortinoRatio))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", metrics.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Total Trades: %d\n", metrics.TotalTrades))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", metrics.WinRate*100))
	builder.WriteString(fmt.Sprintf("Profit Factor: %s\n", formatProfitFactor(metrics.ProfitFactor)))
	builder.WriteString(fmt.Sprintf("Expectancy: %.2f\n", metrics.Expectancy))
	if result.OpenPosition != nil {
		builder.WriteString(fmt.Sprintf("Open Position: %.6f units from %s (marked to market)\n",
			result.OpenPosition.Quantity, result.OpenPosition.EntryDate.Format("2006-01-02")))
	}
	builder.WriteString(fmt.Sprintf("Risk: stop-loss %.2f%%, take-profit %.2f%%, fee %.3f%%\n",
		result.Risk.StopLossPct*100, result.Risk.TakeProfitPct*100, result.Risk.TransactionFeePct*100))
	return builder.String()
}

// WriteEquityCurveCSV writes the per-bar equity curve to disk
func WriteEquityCurveCSV(curve backtest.EquityCurve, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(outputPath, []byte(curve.ToCSV()), 0o644)
}

// WriteTradeLogCSV writes the completed trades to disk, one row per trade
func WriteTradeLogCSV(result *backtest.Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var builder strings.Builder
	builder.WriteString("entry_date,exit_date,entry_price,exit_price,quantity,cash_profit,exit_reason\n")
	for _, trade := range result.Trades {
		builder.WriteString(fmt.Sprintf("%s,%s,%.8f,%.8f,%.8f,%.8f,%s\n",
			trade.EntryDate.Format("2006-01-02T15:04:05Z07:00"),
			trade.ExitDate.Format("2006-01-02T15:04:05Z07:00"),
			trade.EntryPrice,
			trade.ExitPrice,
			trade.Quantity,
			trade.CashProfit,
			trade.ExitReason,
		))
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}

// WriteMetricsCSV exports key metrics for spreadsheets
func WriteMetricsCSV(metrics Metrics, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	csv := "metric,value\n" +
		fmt.Sprintf("initial_capital,%.4f\n", metrics.InitialCapital) +
		fmt.Sprintf("final_capital,%.4f\n", metrics.FinalCapital) +
		fmt.Sprintf("total_return,%.4f\n", metrics.TotalReturn) +
		fmt.Sprintf("cagr,%.4f\n", metrics.CAGR) +
		fmt.Sprintf("sharpe_ratio,%.4f\n", metrics.SharpeRatio) +
		fmt.Sprintf("sortino_ratio,%.4f\n", metrics.SortinoRatio) +
		fmt.Sprintf("max_drawdown,%.4f\n", metrics.MaxDrawdown) +
		fmt.Sprintf("total_trades,%d\n", metrics.TotalTrades) +
		fmt.Sprintf("win_rate,%.4f\n", metrics.WinRate) +
		fmt.Sprintf("profit_factor,%s\n", formatProfitFactor(metrics.ProfitFactor)) +
		fmt.Sprintf("expectancy,%.4f\n", metrics.Expectancy)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.4f", pf)
}

package analysis

import (
	"encoding/json"
	"math"
	"time"

	"github.com/yourusername/crypto-backtester/internal/backtest"
	"github.com/yourusername/crypto-backtester/internal/models"
)

// Metrics represents backtest performance metrics
type Metrics struct {
	InitialCapital   float64   `json:"initial_capital"`
	FinalCapital     float64   `json:"final_capital"`
	TotalReturn      float64   `json:"total_return"`
	CAGR             float64   `json:"cagr"`
	AnnualizedReturn float64   `json:"annualized_return"`
	MaxDrawdown      float64   `json:"max_drawdown"`
	SharpeRatio      float64   `json:"sharpe_ratio"`
	SortinoRatio     float64   `json:"sortino_ratio"`
	CalmarRatio      float64   `json:"calmar_ratio"`
	Volatility       float64   `json:"volatility"`
	TotalTrades      int       `json:"total_trades"`
	WinningTrades    int       `json:"winning_trades"`
	LosingTrades     int       `json:"losing_trades"`
	WinRate          float64   `json:"win_rate"`
	ProfitFactor     float64   `json:"profit_factor"`
	AverageWin       float64   `json:"average_win"`
	AverageLoss      float64   `json:"average_loss"`
	Expectancy       float64   `json:"expectancy"`
	LargestWin       float64   `json:"largest_win"`
	LargestLoss      float64   `json:"largest_loss"`
	AvgHoldingDays   float64   `json:"avg_holding_days"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	TradingDays      int       `json:"trading_days"`
}

// MarshalJSON replaces an infinite profit factor with 0, since JSON has no
// representation for Inf. Zero already means "no losing trades" in the
// persisted schema.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type plain Metrics
	p := plain(m)
	if math.IsInf(p.ProfitFactor, 1) {
		p.ProfitFactor = 0
	}
	return json.Marshal(p)
}

// CalculateMetrics derives performance metrics from a completed run. The
// final equity point marks any open position to the last close, so
// FinalCapital and the ratios built on it include unrealized value.
func CalculateMetrics(result *backtest.Result, riskFreeRate float64) Metrics {
	metrics := Metrics{InitialCapital: result.InitialCapital}
	curve := result.EquityCurve
	if len(curve) == 0 {
		return metrics
	}

	metrics.StartDate = curve[0].Date
	metrics.EndDate = curve[len(curve)-1].Date
	metrics.TradingDays = int(metrics.EndDate.Sub(metrics.StartDate).Hours()/24) + 1
	metrics.FinalCapital = curve[len(curve)-1].TotalCapital

	if metrics.InitialCapital > 0 {
		metrics.TotalReturn = (metrics.FinalCapital - metrics.InitialCapital) / metrics.InitialCapital
		metrics.CAGR = calculateCAGR(metrics.InitialCapital, metrics.FinalCapital, metrics.TradingDays)
		metrics.AnnualizedReturn = metrics.CAGR
	}

	metrics.MaxDrawdown = curve.MaxDrawdown()
	metrics.Volatility = curve.GetVolatility()
	returns := curve.GetReturns()
	metrics.SharpeRatio = calculateSharpeRatio(returns, riskFreeRate)
	metrics.SortinoRatio = calculateSortinoRatio(returns, riskFreeRate)
	if metrics.MaxDrawdown > 0 {
		metrics.CalmarRatio = metrics.AnnualizedReturn / metrics.MaxDrawdown
	}

	metrics.TotalTrades = len(result.Trades)
	metrics.WinningTrades, metrics.LosingTrades, metrics.AverageWin, metrics.AverageLoss, metrics.LargestWin, metrics.LargestLoss = calculateTradeStats(result.Trades)
	metrics.WinRate = calculateWinRate(metrics.WinningTrades, metrics.TotalTrades)
	metrics.ProfitFactor = calculateProfitFactor(result.Trades)
	metrics.Expectancy = calculateExpectancy(result.Trades)
	metrics.AvgHoldingDays = calculateAvgHoldingDays(result.Trades)

	return metrics
}

func calculateCAGR(initial, final float64, days int) float64 {
	if initial <= 0 || final <= 0 || days <= 0 {
		return 0
	}
	years := float64(days) / 365.25
	if years == 0 {
		return 0
	}
	return math.Pow(final/initial, 1.0/years) - 1.0
}

func calculateSharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := average(returns)
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return (mean - riskFreeRate/365.0) / std * math.Sqrt(365)
}

func calculateSortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := average(returns)
	std := downsideStddev(returns)
	if std == 0 {
		return 0
	}
	return (mean - riskFreeRate/365.0) / std * math.Sqrt(365)
}

func calculateProfitFactor(trades []models.Trade) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, trade := range trades {
		if trade.IsWin() {
			grossProfit += trade.CashProfit
		} else {
			grossLoss += math.Abs(trade.CashProfit)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

func calculateExpectancy(trades []models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	net := 0.0
	for _, trade := range trades {
		net += trade.CashProfit
	}
	return net / float64(len(trades))
}

func calculateAvgHoldingDays(trades []models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	total := 0
	for _, trade := range trades {
		total += trade.HoldingDays()
	}
	return float64(total) / float64(len(trades))
}

func calculateTradeStats(trades []models.Trade) (int, int, float64, float64, float64, float64) {
	wins := 0
	losses := 0
	winSum := 0.0
	lossSum := 0.0
	largestWin := 0.0
	largestLoss := 0.0
	for _, trade := range trades {
		pl := trade.CashProfit
		if trade.IsWin() {
			wins++
			winSum += pl
			if pl > largestWin {
				largestWin = pl
			}
		} else if pl < 0 {
			losses++
			lossSum += pl
			if pl < largestLoss {
				largestLoss = pl
			}
		}
	}

	avgWin := 0.0
	avgLoss := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return wins, losses, avgWin, avgLoss, largestWin, largestLoss
}

func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func downsideStddev(values []float64) float64 {
	negatives := make([]float64, 0)
	for _, v := range values {
		if v < 0 {
			negatives = append(negatives, v)
		}
	}
	return stddev(negatives)
}

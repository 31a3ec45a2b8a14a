package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/crypto-backtester/internal/models"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func bar(n int, open, high, low, close float64) models.Candle {
	return models.Candle{Date: day(n), Open: open, High: high, Low: low, Close: close, Volume: 1000}
}

// flatBars returns bars whose OHLC all sit at the given closes
func flatBars(closes ...float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = bar(i+1, c, c, c, c)
	}
	return candles
}

func holdAll(n int) []models.Signal {
	return make([]models.Signal, n)
}

func fullSizes(n int) []float64 {
	sizes := make([]float64, n)
	for i := range sizes {
		sizes[i] = 100
	}
	return sizes
}

func newTestEngine(t *testing.T, capital float64, risk RiskParameters) *Engine {
	t.Helper()
	engine, err := NewEngine(Config{InitialCapital: capital, Risk: risk}, nil)
	require.NoError(t, err)
	return engine
}

func TestRunBuyThenSell(t *testing.T) {
	// 10,000 capital, no fees. Buy at 100 with 50% of cash, sell at 120.
	engine := newTestEngine(t, 10000, RiskParameters{})

	candles := flatBars(100, 105, 102, 110, 120)
	signals := []models.Signal{models.SignalBuy, 0, 0, 0, models.SignalSell}
	sizes := []float64{50, 0, 0, 0, 0}

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, 100.0, trade.EntryPrice)
	assert.Equal(t, 120.0, trade.ExitPrice)
	assert.InDelta(t, 50.0, trade.Quantity, 1e-9)
	assert.InDelta(t, 1000.0, trade.CashProfit, 1e-9)
	assert.Equal(t, models.ExitReasonSignal, trade.ExitReason)

	assert.InDelta(t, 11000.0, result.FinalCash, 1e-9)
	assert.InDelta(t, 11000.0, result.FinalEquity, 1e-9)
	assert.Nil(t, result.OpenPosition)

	// One equity point per bar, marked to market while long.
	require.Len(t, result.EquityCurve, 5)
	assert.InDelta(t, 10000.0, result.EquityCurve[0].TotalCapital, 1e-9) // 5000 cash + 50 units * 100
	assert.InDelta(t, 10250.0, result.EquityCurve[1].TotalCapital, 1e-9) // 5000 cash + 50 units * 105
	assert.InDelta(t, 11000.0, result.EquityCurve[4].TotalCapital, 1e-9)
}

func TestRunStopLossExit(t *testing.T) {
	// Same series but a 5% stop-loss and a dip through 95 on the third bar.
	// The later sell signal must be a no-op because the position is gone.
	engine := newTestEngine(t, 10000, RiskParameters{StopLossPct: 0.05})

	candles := []models.Candle{
		bar(1, 100, 100, 100, 100),
		bar(2, 105, 105, 104, 105),
		bar(3, 102, 103, 94, 102),
		bar(4, 110, 110, 109, 110),
		bar(5, 120, 120, 119, 120),
	}
	signals := []models.Signal{models.SignalBuy, 0, 0, 0, models.SignalSell}
	sizes := []float64{50, 0, 0, 0, 0}

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, models.ExitReasonStopLoss, trade.ExitReason)
	assert.InDelta(t, 95.0, trade.ExitPrice, 1e-9)
	assert.Equal(t, day(3), trade.ExitDate)
	assert.InDelta(t, -250.0, trade.CashProfit, 1e-9)
	assert.InDelta(t, 9750.0, result.FinalCash, 1e-9)
	assert.Nil(t, result.OpenPosition)
}

func TestRunStopLossBeatsTakeProfit(t *testing.T) {
	// A wide bar crosses both thresholds; the stop-loss must win.
	engine := newTestEngine(t, 10000, RiskParameters{StopLossPct: 0.05, TakeProfitPct: 0.05})

	candles := []models.Candle{
		bar(1, 100, 100, 100, 100),
		bar(2, 100, 110, 90, 100),
	}
	signals := []models.Signal{models.SignalBuy, 0}
	sizes := []float64{100, 0}

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, models.ExitReasonStopLoss, result.Trades[0].ExitReason)
	assert.InDelta(t, 95.0, result.Trades[0].ExitPrice, 1e-9)
}

func TestRunTakeProfitExit(t *testing.T) {
	engine := newTestEngine(t, 10000, RiskParameters{TakeProfitPct: 0.10})

	candles := []models.Candle{
		bar(1, 100, 100, 100, 100),
		bar(2, 105, 112, 104, 108),
	}
	signals := []models.Signal{models.SignalBuy, 0}
	sizes := []float64{100, 0}

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, models.ExitReasonTakeProfit, trade.ExitReason)
	assert.InDelta(t, 110.0, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 11000.0, result.FinalCash, 1e-9)
}

func TestRunSameBarReentryAfterRiskExit(t *testing.T) {
	// A stop-loss fires and the same bar carries a buy signal; the engine is
	// flat again by the time entries are evaluated, so it re-enters at the
	// bar's close.
	engine := newTestEngine(t, 10000, RiskParameters{StopLossPct: 0.05})

	candles := []models.Candle{
		bar(1, 100, 100, 100, 100),
		bar(2, 96, 97, 90, 92),
	}
	signals := []models.Signal{models.SignalBuy, models.SignalBuy}
	sizes := []float64{100, 100}

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, models.ExitReasonStopLoss, result.Trades[0].ExitReason)
	require.NotNil(t, result.OpenPosition)
	assert.Equal(t, day(2), result.OpenPosition.EntryDate)
	assert.InDelta(t, 92.0, result.OpenPosition.EntryPrice, 1e-9)
}

func TestRunBuyWhileLongIsNoOp(t *testing.T) {
	engine := newTestEngine(t, 10000, RiskParameters{})

	candles := flatBars(100, 110, 120)
	signals := []models.Signal{models.SignalBuy, models.SignalBuy, 0}
	sizes := fullSizes(3)

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	require.NotNil(t, result.OpenPosition)
	assert.Equal(t, day(1), result.OpenPosition.EntryDate)
	assert.Empty(t, result.Trades)
}

func TestRunSellWhileFlatIsNoOp(t *testing.T) {
	engine := newTestEngine(t, 10000, RiskParameters{})

	candles := flatBars(100, 110)
	signals := []models.Signal{models.SignalSell, models.SignalSell}
	sizes := fullSizes(2)

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	assert.InDelta(t, 10000.0, result.FinalCash, 1e-9)
}

func TestRunZeroSizeEntryIsNoOp(t *testing.T) {
	engine := newTestEngine(t, 10000, RiskParameters{})

	candles := flatBars(100, 110)
	signals := []models.Signal{models.SignalBuy, 0}
	sizes := []float64{0, 0}

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	assert.Nil(t, result.OpenPosition)
	assert.InDelta(t, 10000.0, result.FinalCash, 1e-9)
}

func TestRunOpenPositionMarkedToMarket(t *testing.T) {
	// No exit before the series ends: the position stays open and the final
	// equity values it at the last close without a trade-log entry.
	engine := newTestEngine(t, 10000, RiskParameters{})

	candles := flatBars(100, 150)
	signals := []models.Signal{models.SignalBuy, 0}
	sizes := fullSizes(2)

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	require.NotNil(t, result.OpenPosition)
	assert.InDelta(t, 0.0, result.FinalCash, 1e-9)
	assert.InDelta(t, 15000.0, result.FinalEquity, 1e-9)
}

func TestRunFeesReduceProceeds(t *testing.T) {
	// 0.1% fee each way on a full-size round trip at a constant price.
	engine := newTestEngine(t, 10000, RiskParameters{TransactionFeePct: 0.001})

	candles := flatBars(100, 100)
	signals := []models.Signal{models.SignalBuy, models.SignalSell}
	sizes := fullSizes(2)

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	// Entry: 10000 allocated, 10 fee, 99.9 units. Exit: 9990 gross, 9.99 fee.
	assert.InDelta(t, 99.9, result.Trades[0].Quantity, 1e-9)
	assert.InDelta(t, 9980.01, result.FinalCash, 1e-6)
	assert.InDelta(t, -19.99, result.Trades[0].CashProfit, 1e-6)
}

func TestRunFeeMonotonicity(t *testing.T) {
	candles := flatBars(100, 105, 110, 115, 120)
	signals := []models.Signal{models.SignalBuy, 0, 0, 0, models.SignalSell}
	sizes := fullSizes(5)

	var previous float64
	for i, fee := range []float64{0, 0.001, 0.01, 0.05} {
		engine := newTestEngine(t, 10000, RiskParameters{TransactionFeePct: fee})
		result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
		require.NoError(t, err)
		if i > 0 {
			assert.Less(t, result.FinalEquity, previous, "fee %v should lower equity", fee)
		}
		previous = result.FinalEquity
	}
}

func TestRunCapitalConservation(t *testing.T) {
	// When the run ends flat, final cash equals initial capital plus the sum
	// of trade profits, fees included.
	engine := newTestEngine(t, 10000, RiskParameters{StopLossPct: 0.05, TakeProfitPct: 0.1, TransactionFeePct: 0.002})

	candles := []models.Candle{
		bar(1, 100, 101, 99, 100),
		bar(2, 102, 115, 101, 108),
		bar(3, 108, 109, 100, 103),
		bar(4, 103, 104, 95, 97),
		bar(5, 97, 99, 96, 98),
	}
	signals := []models.Signal{models.SignalBuy, 0, models.SignalBuy, 0, models.SignalSell}
	sizes := []float64{80, 0, 60, 0, 0}

	result, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)
	require.Nil(t, result.OpenPosition)

	total := 0.0
	for _, trade := range result.Trades {
		total += trade.CashProfit
	}
	assert.InDelta(t, 10000+total, result.FinalCash, 1e-9)
	assert.GreaterOrEqual(t, result.FinalCash, 0.0)
}

func TestRunDeterministicReplay(t *testing.T) {
	candles := []models.Candle{
		bar(1, 100, 101, 99, 100),
		bar(2, 102, 115, 101, 108),
		bar(3, 108, 109, 100, 103),
		bar(4, 103, 104, 95, 97),
	}
	signals := []models.Signal{models.SignalBuy, 0, models.SignalSell, models.SignalBuy}
	sizes := []float64{70, 0, 0, 40}

	engine := newTestEngine(t, 10000, RiskParameters{StopLossPct: 0.03, TransactionFeePct: 0.001})

	first, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)
	second, err := engine.Run(Input{StrategyName: "test", Candles: candles, Signals: signals, Sizes: sizes})
	require.NoError(t, err)

	assert.Equal(t, first.EquityCurve, second.EquityCurve)
	assert.Equal(t, first.FinalCash, second.FinalCash)
	require.Equal(t, len(first.Trades), len(second.Trades))
	for i := range first.Trades {
		assert.Equal(t, first.Trades[i].CashProfit, second.Trades[i].CashProfit)
		assert.Equal(t, first.Trades[i].ExitReason, second.Trades[i].ExitReason)
	}
}

func TestRunInputValidation(t *testing.T) {
	engine := newTestEngine(t, 10000, RiskParameters{})

	valid := flatBars(100, 110)

	tests := []struct {
		name   string
		input  Input
		reason string
	}{
		{
			name:   "empty series",
			input:  Input{},
			reason: models.ReasonConfig,
		},
		{
			name:   "signal length mismatch",
			input:  Input{Candles: valid, Signals: holdAll(1), Sizes: fullSizes(2)},
			reason: models.ReasonData,
		},
		{
			name:   "size length mismatch",
			input:  Input{Candles: valid, Signals: holdAll(2), Sizes: fullSizes(1)},
			reason: models.ReasonData,
		},
		{
			name: "invalid signal value",
			input: Input{
				Candles: valid,
				Signals: []models.Signal{7, 0},
				Sizes:   fullSizes(2),
			},
			reason: models.ReasonData,
		},
		{
			name: "size out of range",
			input: Input{
				Candles: valid,
				Signals: holdAll(2),
				Sizes:   []float64{100, 101},
			},
			reason: models.ReasonData,
		},
		{
			name: "high below low",
			input: Input{
				Candles: []models.Candle{bar(1, 100, 90, 110, 100)},
				Signals: holdAll(1),
				Sizes:   fullSizes(1),
			},
			reason: models.ReasonData,
		},
		{
			name: "dates not ascending",
			input: Input{
				Candles: []models.Candle{bar(2, 100, 100, 100, 100), bar(1, 100, 100, 100, 100)},
				Signals: holdAll(2),
				Sizes:   fullSizes(2),
			},
			reason: models.ReasonData,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Run(tc.input)
			require.Error(t, err)
			assert.True(t, models.IsReason(err, tc.reason), "expected reason %s, got %v", tc.reason, err)
		})
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	_, err := NewEngine(Config{InitialCapital: 0, Risk: RiskParameters{}}, nil)
	require.Error(t, err)

	_, err = NewEngine(Config{InitialCapital: 10000, Risk: RiskParameters{StopLossPct: 1.5}}, nil)
	require.Error(t, err)
	assert.True(t, models.IsReason(err, models.ReasonConfig))
}

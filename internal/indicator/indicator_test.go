package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/crypto-backtester/internal/models"
)

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	result := SMA(values, 3)

	require.Len(t, result, 5)
	assert.True(t, math.IsNaN(result[0]))
	assert.True(t, math.IsNaN(result[1]))
	assert.InDelta(t, 2.0, result[2], 1e-9)
	assert.InDelta(t, 3.0, result[3], 1e-9)
	assert.InDelta(t, 4.0, result[4], 1e-9)
}

func TestSMAWindowLargerThanSeries(t *testing.T) {
	result := SMA([]float64{1, 2}, 5)
	for _, v := range result {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMA(t *testing.T) {
	values := []float64{10, 20, 30}
	result := EMA(values, 3) // alpha = 0.5

	require.Len(t, result, 3)
	assert.InDelta(t, 10.0, result[0], 1e-9)
	assert.InDelta(t, 15.0, result[1], 1e-9)
	assert.InDelta(t, 22.5, result[2], 1e-9)
}

func TestEMAConstantSeries(t *testing.T) {
	result := EMA([]float64{50, 50, 50, 50}, 10)
	for _, v := range result {
		assert.InDelta(t, 50.0, v, 1e-9)
	}
}

func TestRSIWarmupAndBounds(t *testing.T) {
	values := []float64{44, 44.5, 43.8, 44.2, 44.9, 45.3, 44.7, 45.1, 45.8, 46.2}
	period := 4
	result := RSI(values, period)

	require.Len(t, result, len(values))
	for i := 0; i < period; i++ {
		assert.True(t, math.IsNaN(result[i]), "index %d should be warm-up", i)
	}
	for i := period; i < len(values); i++ {
		assert.GreaterOrEqual(t, result[i], 0.0)
		assert.LessOrEqual(t, result[i], 100.0)
	}
}

func TestRSIAllGains(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	result := RSI(values, 3)
	assert.InDelta(t, 100.0, result[len(result)-1], 1e-9)
}

func TestRSIAllLosses(t *testing.T) {
	values := []float64{6, 5, 4, 3, 2, 1}
	result := RSI(values, 3)
	assert.InDelta(t, 0.0, result[len(result)-1], 1e-9)
}

func TestATRConstantRange(t *testing.T) {
	candles := make([]models.Candle, 6)
	for i := range candles {
		candles[i] = models.Candle{
			Date:  time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Open:  100,
			High:  102,
			Low:   98,
			Close: 100,
		}
	}

	result := ATR(candles, 3)
	require.Len(t, result, 6)
	// Constant 4-point true range converges to 4.
	assert.InDelta(t, 4.0, result[0], 1e-9)
	assert.InDelta(t, 4.0, result[5], 1e-9)
}

func TestATRGapUsesPrevClose(t *testing.T) {
	candles := []models.Candle{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Open: 100, High: 101, Low: 99, Close: 100},
		// Gap up: high-low is 2, but the gap from the prior close is 9.
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 108, High: 109, Low: 107, Close: 108},
	}

	result := ATR(candles, 2)
	// TR(1) = max(2, |109-100|, |107-100|) = 9; ATR = 0.5*9 + 0.5*2 = 5.5
	assert.InDelta(t, 5.5, result[1], 1e-9)
}

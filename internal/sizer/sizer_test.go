package sizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/crypto-backtester/internal/models"
)

func sizerCandles(bars ...[3]float64) []models.Candle {
	candles := make([]models.Candle, len(bars))
	for i, b := range bars {
		candles[i] = models.Candle{
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   b[2],
			High:   b[0],
			Low:    b[1],
			Close:  b[2],
			Volume: 1000,
		}
	}
	return candles
}

func TestNewUnknownSizer(t *testing.T) {
	_, err := New("kelly", nil)
	require.Error(t, err)
	assert.True(t, models.IsReason(err, models.ReasonConfig))
}

func TestFixedSizerDefaults(t *testing.T) {
	s, err := New("fixed", nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed", s.Name())
	assert.Equal(t, 100.0, s.Parameters()["fixed_size_pct"])
}

func TestFixedSizerBounds(t *testing.T) {
	_, err := New("fixed", map[string]any{"fixed_size_pct": 0.0})
	require.Error(t, err)

	_, err = New("fixed", map[string]any{"fixed_size_pct": 100.5})
	require.Error(t, err)
}

func TestFixedSizerEmitsOnSignalBars(t *testing.T) {
	s, err := New("fixed", map[string]any{"fixed_size_pct": 40.0})
	require.NoError(t, err)

	candles := sizerCandles([3]float64{101, 99, 100}, [3]float64{103, 101, 102}, [3]float64{104, 102, 103})
	signals := []models.Signal{models.SignalBuy, models.SignalHold, models.SignalSell}

	sizes, err := s.Sizes(candles, signals)
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 0, 40}, sizes)
}

func TestFixedSizerLengthMismatch(t *testing.T) {
	s, err := New("fixed", nil)
	require.NoError(t, err)

	candles := sizerCandles([3]float64{101, 99, 100})
	_, err = s.Sizes(candles, []models.Signal{models.SignalBuy, models.SignalHold})
	require.Error(t, err)
}

func TestATRSizerScalesWithVolatility(t *testing.T) {
	s, err := New("atr", map[string]any{"atr_period": 2, "risk_factor": 0.02})
	require.NoError(t, err)

	// Calm series: tiny ranges around 100.
	calm := sizerCandles(
		[3]float64{100.5, 99.5, 100},
		[3]float64{100.5, 99.5, 100},
		[3]float64{100.5, 99.5, 100},
		[3]float64{100.5, 99.5, 100},
	)
	// Wild series: 20-point ranges around 100.
	wild := sizerCandles(
		[3]float64{110, 90, 100},
		[3]float64{110, 90, 100},
		[3]float64{110, 90, 100},
		[3]float64{110, 90, 100},
	)
	signals := []models.Signal{0, 0, 0, models.SignalBuy}

	calmSizes, err := s.Sizes(calm, signals)
	require.NoError(t, err)
	wildSizes, err := s.Sizes(wild, signals)
	require.NoError(t, err)

	assert.Greater(t, calmSizes[3], wildSizes[3])
	assert.LessOrEqual(t, calmSizes[3], 100.0)
	assert.Greater(t, wildSizes[3], 0.0)
}

func TestATRSizerCapsAtMax(t *testing.T) {
	s, err := New("atr", map[string]any{"atr_period": 2, "risk_factor": 1.0, "max_position_pct": 75.0})
	require.NoError(t, err)

	candles := sizerCandles(
		[3]float64{100.1, 99.9, 100},
		[3]float64{100.1, 99.9, 100},
		[3]float64{100.1, 99.9, 100},
	)
	signals := []models.Signal{0, 0, models.SignalBuy}

	sizes, err := s.Sizes(candles, signals)
	require.NoError(t, err)
	assert.Equal(t, 75.0, sizes[2])
}

func TestATRSizerHoldBarsGetZero(t *testing.T) {
	s, err := New("atr", map[string]any{"atr_period": 14, "max_position_pct": 60.0})
	require.NoError(t, err)

	candles := sizerCandles([3]float64{101, 99, 100}, [3]float64{102, 100, 101})
	signals := []models.Signal{models.SignalBuy, models.SignalHold}

	sizes, err := s.Sizes(candles, signals)
	require.NoError(t, err)
	assert.Equal(t, 60.0, sizes[0])
	assert.Equal(t, 0.0, sizes[1])
}

func TestATRSizerParamValidation(t *testing.T) {
	tests := []map[string]any{
		{"atr_period": 0},
		{"risk_factor": 0.0},
		{"risk_factor": 1.5},
		{"max_position_pct": 0.0},
		{"max_position_pct": 120.0},
		{"unknown_key": 1},
	}
	for _, params := range tests {
		_, err := New("atr", params)
		assert.Error(t, err, "params %v should fail", params)
	}
}

// Package indicator provides batch technical-indicator calculations over
// complete price series. Values before an indicator's warm-up window are
// NaN; consumers must treat NaN as "no value yet".
package indicator

import (
	"math"

	"github.com/yourusername/crypto-backtester/internal/models"
)

// SMA computes the simple moving average of values over the given window
func SMA(values []float64, window int) []float64 {
	result := nanSlice(len(values))
	if window <= 0 || window > len(values) {
		return result
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			result[i] = sum / float64(window)
		}
	}
	return result
}

// EMA computes the exponential moving average with smoothing 2/(span+1).
// The first value seeds the average, matching the conventional non-adjusted
// recursive form.
func EMA(values []float64, span int) []float64 {
	result := nanSlice(len(values))
	if span <= 0 || len(values) == 0 {
		return result
	}

	alpha := 2.0 / (float64(span) + 1.0)
	ema := values[0]
	result[0] = ema
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		result[i] = ema
	}
	return result
}

// RSI computes the relative strength index over the given period using
// Wilder's smoothing
func RSI(values []float64, period int) []float64 {
	result := nanSlice(len(values))
	if period <= 0 || len(values) <= period {
		return result
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	result[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain := 0.0
		loss := 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		result[i] = rsiValue(avgGain, avgLoss)
	}
	return result
}

// ATR computes the average true range over the given period using Wilder's
// smoothing (recursive mean with alpha = 1/period)
func ATR(candles []models.Candle, period int) []float64 {
	result := nanSlice(len(candles))
	if period <= 0 || len(candles) == 0 {
		return result
	}

	alpha := 1.0 / float64(period)
	atr := trueRange(candles, 0)
	result[0] = atr
	for i := 1; i < len(candles); i++ {
		atr = alpha*trueRange(candles, i) + (1-alpha)*atr
		result[i] = atr
	}
	return result
}

// trueRange is the largest of high-low, |high-prevClose| and |low-prevClose|
func trueRange(candles []models.Candle, i int) float64 {
	highLow := candles[i].High - candles[i].Low
	if i == 0 {
		return highLow
	}
	prevClose := candles[i-1].Close
	tr := highLow
	if v := math.Abs(candles[i].High - prevClose); v > tr {
		tr = v
	}
	if v := math.Abs(candles[i].Low - prevClose); v > tr {
		tr = v
	}
	return tr
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

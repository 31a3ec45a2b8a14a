package backtest

import (
	"bytes"
	"math"
	"strconv"
	"time"
)

// EquityPoint represents total portfolio value at the close of one bar
type EquityPoint struct {
	Date         time.Time `json:"date"`
	TotalCapital float64   `json:"total_capital"`
}

// EquityCurve represents a time-series of equity points, one per input bar
type EquityCurve []EquityPoint

// GetReturns calculates bar-over-bar returns from the equity curve
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i := 1; i < len(e); i++ {
		prev := e[i-1].TotalCapital
		curr := e[i].TotalCapital
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// GetVolatility calculates standard deviation of returns
func (e EquityCurve) GetVolatility() float64 {
	returns := e.GetReturns()
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance)
}

// MaxDrawdown calculates the deepest peak-to-trough decline as a fraction
func (e EquityCurve) MaxDrawdown() float64 {
	maxDD := 0.0
	peak := 0.0
	for _, p := range e {
		if p.TotalCapital > peak {
			peak = p.TotalCapital
		}
		if peak == 0 {
			continue
		}
		drawdown := (peak - p.TotalCapital) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}

// ToCSV exports the equity curve to a CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("date,total_capital\n")
	for _, point := range e {
		buf.WriteString(point.Date.Format(time.RFC3339))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(point.TotalCapital, 'f', 6, 64))
		buf.WriteString("\n")
	}
	return buf.String()
}

package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/crypto-backtester/internal/indicator"
	"github.com/yourusername/crypto-backtester/internal/models"
)

var rsiSchema = paramSchema{
	"period":     {kind: "int"},
	"oversold":   {kind: "float"},
	"overbought": {kind: "float"},
}

// rsiStrategy buys when RSI recovers up through the oversold threshold and
// sells when it falls back through the overbought threshold.
type rsiStrategy struct {
	period     int
	oversold   float64
	overbought float64
}

func newRSIStrategy(params map[string]any) (SignalSource, error) {
	if err := rsiSchema.checkUnknown(params); err != nil {
		return nil, err
	}
	period, err := intParam(params, "period", 14)
	if err != nil {
		return nil, err
	}
	oversold, err := floatParam(params, "oversold", 30)
	if err != nil {
		return nil, err
	}
	overbought, err := floatParam(params, "overbought", 70)
	if err != nil {
		return nil, err
	}
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	if oversold < 0 || overbought > 100 || oversold >= overbought {
		return nil, fmt.Errorf("thresholds must satisfy 0 <= oversold < overbought <= 100, got %v and %v", oversold, overbought)
	}
	return &rsiStrategy{period: period, oversold: oversold, overbought: overbought}, nil
}

func (r *rsiStrategy) Name() string {
	return "rsi"
}

func (r *rsiStrategy) Parameters() map[string]any {
	return map[string]any{
		"period":     r.period,
		"oversold":   r.oversold,
		"overbought": r.overbought,
	}
}

func (r *rsiStrategy) Generate(candles []models.Candle) ([]models.Signal, error) {
	rsi := indicator.RSI(models.Closes(candles), r.period)

	signals := make([]models.Signal, len(candles))
	prev := math.NaN()
	for i := range candles {
		curr := rsi[i]
		if math.IsNaN(curr) {
			continue
		}
		if !math.IsNaN(prev) {
			if prev <= r.oversold && curr > r.oversold {
				signals[i] = models.SignalBuy
			} else if prev >= r.overbought && curr < r.overbought {
				signals[i] = models.SignalSell
			}
		}
		prev = curr
	}
	return signals, nil
}

package sizer

import (
	"fmt"
	"math"

	"github.com/yourusername/crypto-backtester/internal/indicator"
	"github.com/yourusername/crypto-backtester/internal/models"
)

// atrSizer scales position size inversely to volatility: the higher the
// ATR relative to price, the smaller the committed fraction, keeping risk
// exposure roughly constant across regimes.
type atrSizer struct {
	period         int
	riskFactor     float64
	maxPositionPct float64
}

func newATRSizer(params map[string]any) (PositionSizer, error) {
	if err := checkKeys(params, "atr_period", "risk_factor", "max_position_pct"); err != nil {
		return nil, err
	}
	period, err := intParam(params, "atr_period", 14)
	if err != nil {
		return nil, err
	}
	riskFactor, err := floatParam(params, "risk_factor", 0.02)
	if err != nil {
		return nil, err
	}
	maxPct, err := floatParam(params, "max_position_pct", 100.0)
	if err != nil {
		return nil, err
	}
	if period <= 0 {
		return nil, fmt.Errorf("atr_period must be positive, got %d", period)
	}
	if riskFactor <= 0 || riskFactor > 1 {
		return nil, fmt.Errorf("risk_factor must be in (0, 1], got %v", riskFactor)
	}
	if maxPct <= 0 || maxPct > 100 {
		return nil, fmt.Errorf("max_position_pct must be in (0, 100], got %v", maxPct)
	}
	return &atrSizer{period: period, riskFactor: riskFactor, maxPositionPct: maxPct}, nil
}

func (a *atrSizer) Name() string {
	return "atr"
}

func (a *atrSizer) Parameters() map[string]any {
	return map[string]any{
		"atr_period":       a.period,
		"risk_factor":      a.riskFactor,
		"max_position_pct": a.maxPositionPct,
	}
}

// Sizes computes size = risk_factor*100 / (ATR / close), capped at the
// configured maximum. Bars without a usable ATR get the cap, since zero
// volatility carries no measurable risk to scale against.
func (a *atrSizer) Sizes(candles []models.Candle, signals []models.Signal) ([]float64, error) {
	if len(signals) != len(candles) {
		return nil, fmt.Errorf("signal series length %d does not match %d bars", len(signals), len(candles))
	}

	atr := indicator.ATR(candles, a.period)
	sizes := make([]float64, len(candles))
	for i, signal := range signals {
		if signal == models.SignalHold {
			continue
		}
		size := a.maxPositionPct
		if !math.IsNaN(atr[i]) && atr[i] > 0 && candles[i].Close > 0 {
			size = (a.riskFactor * 100) / (atr[i] / candles[i].Close)
			if size > a.maxPositionPct {
				size = a.maxPositionPct
			}
		}
		sizes[i] = size
	}
	return sizes, nil
}

package sizer

import (
	"fmt"

	"github.com/yourusername/crypto-backtester/internal/models"
)

// fixedSizer commits the same percentage of capital on every signaled bar
type fixedSizer struct {
	fixedSizePct float64
}

func newFixedSizer(params map[string]any) (PositionSizer, error) {
	if err := checkKeys(params, "fixed_size_pct"); err != nil {
		return nil, err
	}
	pct, err := floatParam(params, "fixed_size_pct", 100.0)
	if err != nil {
		return nil, err
	}
	if pct <= 0 || pct > 100 {
		return nil, fmt.Errorf("fixed_size_pct must be in (0, 100], got %v", pct)
	}
	return &fixedSizer{fixedSizePct: pct}, nil
}

func (f *fixedSizer) Name() string {
	return "fixed"
}

func (f *fixedSizer) Parameters() map[string]any {
	return map[string]any{"fixed_size_pct": f.fixedSizePct}
}

func (f *fixedSizer) Sizes(candles []models.Candle, signals []models.Signal) ([]float64, error) {
	if len(signals) != len(candles) {
		return nil, fmt.Errorf("signal series length %d does not match %d bars", len(signals), len(candles))
	}
	sizes := make([]float64, len(candles))
	for i, signal := range signals {
		if signal != models.SignalHold {
			sizes[i] = f.fixedSizePct
		}
	}
	return sizes, nil
}

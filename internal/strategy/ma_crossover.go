package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/crypto-backtester/internal/indicator"
	"github.com/yourusername/crypto-backtester/internal/models"
)

const (
	defaultShortWindow = 50
	defaultLongWindow  = 200
)

var maCrossoverSchema = paramSchema{
	"short_window": {kind: "int"},
	"long_window":  {kind: "int"},
}

// maCrossover emits a buy when the short moving average crosses above the
// long one and a sell on the opposite cross. The maFunc field selects the
// averaging flavor (simple or exponential).
type maCrossover struct {
	name        string
	shortWindow int
	longWindow  int
	maFunc      func(values []float64, window int) []float64
}

func newSMACrossover(params map[string]any) (SignalSource, error) {
	return newCrossover("sma_crossover", indicator.SMA, params)
}

func newEMACrossover(params map[string]any) (SignalSource, error) {
	return newCrossover("ema_crossover", indicator.EMA, params)
}

func newCrossover(name string, maFunc func([]float64, int) []float64, params map[string]any) (SignalSource, error) {
	if err := maCrossoverSchema.checkUnknown(params); err != nil {
		return nil, err
	}
	short, err := intParam(params, "short_window", defaultShortWindow)
	if err != nil {
		return nil, err
	}
	long, err := intParam(params, "long_window", defaultLongWindow)
	if err != nil {
		return nil, err
	}
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("windows must be positive, got short=%d long=%d", short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("short_window %d must be less than long_window %d", short, long)
	}
	return &maCrossover{name: name, shortWindow: short, longWindow: long, maFunc: maFunc}, nil
}

func (m *maCrossover) Name() string {
	return m.name
}

func (m *maCrossover) Parameters() map[string]any {
	return map[string]any{
		"short_window": m.shortWindow,
		"long_window":  m.longWindow,
	}
}

// Generate compares the two averages bar by bar and signals only on trend
// flips, holding everywhere else. Bars inside either warm-up window hold.
func (m *maCrossover) Generate(candles []models.Candle) ([]models.Signal, error) {
	closes := models.Closes(candles)
	shortMA := m.maFunc(closes, m.shortWindow)
	longMA := m.maFunc(closes, m.longWindow)

	signals := make([]models.Signal, len(candles))
	prevTrend := 0
	for i := range candles {
		if math.IsNaN(shortMA[i]) || math.IsNaN(longMA[i]) {
			continue
		}
		trend := -1
		if shortMA[i] > longMA[i] {
			trend = 1
		}
		if prevTrend != 0 && trend != prevTrend {
			if trend == 1 {
				signals[i] = models.SignalBuy
			} else {
				signals[i] = models.SignalSell
			}
		}
		prevTrend = trend
	}
	return signals, nil
}

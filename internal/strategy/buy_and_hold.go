package strategy

import (
	"fmt"

	"github.com/yourusername/crypto-backtester/internal/models"
)

var buyAndHoldSchema = paramSchema{}

// buyAndHold buys on the first bar and signals a sell on the last, so the
// full-period market return becomes the benchmark equity curve.
type buyAndHold struct{}

func newBuyAndHold(params map[string]any) (SignalSource, error) {
	if err := buyAndHoldSchema.checkUnknown(params); err != nil {
		return nil, err
	}
	return &buyAndHold{}, nil
}

func (b *buyAndHold) Name() string {
	return "buy_and_hold"
}

func (b *buyAndHold) Parameters() map[string]any {
	return map[string]any{}
}

func (b *buyAndHold) Generate(candles []models.Candle) ([]models.Signal, error) {
	if len(candles) < 2 {
		return nil, fmt.Errorf("buy and hold requires at least two bars, got %d", len(candles))
	}
	signals := make([]models.Signal, len(candles))
	signals[0] = models.SignalBuy
	signals[len(signals)-1] = models.SignalSell
	return signals, nil
}

package strategy

import (
	"github.com/yourusername/crypto-backtester/internal/models"
)

// SignalSource generates one trading signal per bar from price history.
// Implementations must be pure: the signal for bar i may depend only on
// bars 0..i, never on later bars, and repeated calls with the same input
// must produce the same output.
type SignalSource interface {
	Name() string
	Generate(candles []models.Candle) ([]models.Signal, error)
	Parameters() map[string]any
}

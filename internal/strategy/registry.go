package strategy

import (
	"fmt"
	"sort"

	"github.com/yourusername/crypto-backtester/internal/models"
)

// Constructor builds a signal source from its configured parameters,
// validating them eagerly
type Constructor func(params map[string]any) (SignalSource, error)

var registry = map[string]Constructor{
	"sma_crossover": newSMACrossover,
	"ema_crossover": newEMACrossover,
	"buy_and_hold":  newBuyAndHold,
	"rsi":           newRSIStrategy,
}

// New constructs the signal source registered under typeTag. Unknown tags
// fail immediately rather than at first use.
func New(typeTag string, params map[string]any) (SignalSource, error) {
	build, ok := registry[typeTag]
	if !ok {
		return nil, models.NewComponentError(
			"strategy-registry",
			models.ReasonConfig,
			fmt.Sprintf("unknown strategy type %q (available: %v)", typeTag, Types()),
			nil,
		)
	}
	source, err := build(params)
	if err != nil {
		return nil, models.NewComponentError(
			"strategy-registry",
			models.ReasonConfig,
			fmt.Sprintf("invalid parameters for strategy type %q", typeTag),
			err,
		)
	}
	return source, nil
}

// Register adds a strategy type to the registry. New variants plug in here
// without touching the engine.
func Register(typeTag string, build Constructor) error {
	if _, exists := registry[typeTag]; exists {
		return fmt.Errorf("strategy type %q already registered", typeTag)
	}
	registry[typeTag] = build
	return nil
}

// Types lists the registered strategy type tags in stable order
func Types() []string {
	types := make([]string, 0, len(registry))
	for tag := range registry {
		types = append(types, tag)
	}
	sort.Strings(types)
	return types
}

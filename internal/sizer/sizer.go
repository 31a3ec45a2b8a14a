// Package sizer provides position-sizing algorithms. A sizer decides what
// percentage of available capital to commit on each bar; the value is only
// consulted by the engine on buy bars.
package sizer

import (
	"fmt"
	"sort"

	"github.com/yourusername/crypto-backtester/internal/models"
)

// PositionSizer produces one size fraction in [0, 100] per bar, aligned
// with the candle series. Implementations must be pure functions of their
// inputs.
type PositionSizer interface {
	Name() string
	Sizes(candles []models.Candle, signals []models.Signal) ([]float64, error)
	Parameters() map[string]any
}

// Constructor builds a position sizer from its configured parameters
type Constructor func(params map[string]any) (PositionSizer, error)

var registry = map[string]Constructor{
	"fixed": newFixedSizer,
	"atr":   newATRSizer,
}

// New constructs the position sizer registered under typeTag
func New(typeTag string, params map[string]any) (PositionSizer, error) {
	build, ok := registry[typeTag]
	if !ok {
		return nil, models.NewComponentError(
			"sizer-registry",
			models.ReasonConfig,
			fmt.Sprintf("unknown position sizer type %q (available: %v)", typeTag, Types()),
			nil,
		)
	}
	s, err := build(params)
	if err != nil {
		return nil, models.NewComponentError(
			"sizer-registry",
			models.ReasonConfig,
			fmt.Sprintf("invalid parameters for position sizer type %q", typeTag),
			err,
		)
	}
	return s, nil
}

// Types lists the registered sizer type tags in stable order
func Types() []string {
	types := make([]string, 0, len(registry))
	for tag := range registry {
		types = append(types, tag)
	}
	sort.Strings(types)
	return types
}

// floatParam extracts a number parameter, tolerating decoder representations
func floatParam(params map[string]any, key string, fallback float64) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("parameter %q must be a number, got %T", key, raw)
	}
}

// intParam extracts an integer parameter
func intParam(params map[string]any, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("parameter %q must be an integer, got %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("parameter %q must be an integer, got %T", key, raw)
	}
}

func checkKeys(params map[string]any, allowed ...string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, key := range allowed {
		allowedSet[key] = true
	}
	var unknown []string
	for key := range params {
		if !allowedSet[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown parameters %v (accepted: %v)", unknown, allowed)
	}
	return nil
}

package models

import "fmt"

// Signal represents a per-bar trading decision
type Signal int8

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

// String returns a human-readable signal name
func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	case SignalHold:
		return "hold"
	default:
		return fmt.Sprintf("invalid(%d)", int8(s))
	}
}

// Valid reports whether the signal is one of buy, sell, hold
func (s Signal) Valid() bool {
	return s == SignalBuy || s == SignalSell || s == SignalHold
}

// ParseSignal converts a wire value (1, -1, 0) into a Signal
func ParseSignal(value int) (Signal, error) {
	s := Signal(value)
	if !s.Valid() {
		return SignalHold, fmt.Errorf("invalid signal value %d: must be 1 (buy), -1 (sell) or 0 (hold)", value)
	}
	return s, nil
}

package models

import (
	"fmt"
	"math"
	"time"
)

// Candle represents a single OHLCV price bar
type Candle struct {
	Date   time.Time `db:"date" json:"date"`
	Open   float64   `db:"open" json:"open"`
	High   float64   `db:"high" json:"high"`
	Low    float64   `db:"low" json:"low"`
	Close  float64   `db:"close" json:"close"`
	Volume float64   `db:"volume" json:"volume"`
}

// Validate checks the candle for data-integrity violations
func (c Candle) Validate() error {
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"open", c.Open},
		{"high", c.High},
		{"low", c.Low},
		{"close", c.Close},
		{"volume", c.Volume},
	} {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return fmt.Errorf("field %s is not finite", field.name)
		}
	}
	if c.High < c.Low {
		return fmt.Errorf("high %.8f below low %.8f", c.High, c.Low)
	}
	if c.Open < c.Low || c.Open > c.High {
		return fmt.Errorf("open %.8f outside [low, high]", c.Open)
	}
	if c.Close < c.Low || c.Close > c.High {
		return fmt.Errorf("close %.8f outside [low, high]", c.Close)
	}
	return nil
}

// ValidateSeries checks a candle sequence for ordering and per-bar integrity
func ValidateSeries(candles []Candle) error {
	for i, candle := range candles {
		if err := candle.Validate(); err != nil {
			return fmt.Errorf("bar %d (%s): %w", i, candle.Date.Format("2006-01-02"), err)
		}
		if i == 0 {
			continue
		}
		if !candles[i-1].Date.Before(candle.Date) {
			return fmt.Errorf("bar %d (%s): date not strictly after previous bar", i, candle.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Closes extracts the close-price series
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}
	return closes
}

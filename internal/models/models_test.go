package models

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandleValidate(t *testing.T) {
	valid := Candle{Open: 100, High: 105, Low: 95, Close: 102, Volume: 10}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		candle Candle
	}{
		{"high below low", Candle{Open: 100, High: 90, Low: 95, Close: 92, Volume: 1}},
		{"open above high", Candle{Open: 110, High: 105, Low: 95, Close: 100, Volume: 1}},
		{"close below low", Candle{Open: 100, High: 105, Low: 95, Close: 90, Volume: 1}},
		{"NaN close", Candle{Open: 100, High: 105, Low: 95, Close: math.NaN(), Volume: 1}},
		{"infinite high", Candle{Open: 100, High: math.Inf(1), Low: 95, Close: 100, Volume: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.candle.Validate())
		})
	}
}

func TestValidateSeries(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(day int) Candle {
		return Candle{Date: base.AddDate(0, 0, day), Open: 100, High: 105, Low: 95, Close: 100, Volume: 1}
	}

	require.NoError(t, ValidateSeries(nil))
	require.NoError(t, ValidateSeries([]Candle{mk(0), mk(1), mk(2)}))

	err := ValidateSeries([]Candle{mk(0), mk(2), mk(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not strictly after")

	err = ValidateSeries([]Candle{mk(0), mk(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bar 1")
}

func TestCloses(t *testing.T) {
	candles := []Candle{
		{Open: 1, High: 3, Low: 1, Close: 2},
		{Open: 2, High: 4, Low: 2, Close: 3},
	}
	assert.Equal(t, []float64{2, 3}, Closes(candles))
	assert.Empty(t, Closes(nil))
}

func TestParseSignal(t *testing.T) {
	for value, want := range map[int]Signal{1: SignalBuy, -1: SignalSell, 0: SignalHold} {
		got, err := ParseSignal(value)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, value := range []int{2, -2, 100} {
		_, err := ParseSignal(value)
		require.Error(t, err, "value %d", value)
		assert.Contains(t, err.Error(), fmt.Sprintf("%d", value))
	}
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "buy", SignalBuy.String())
	assert.Equal(t, "sell", SignalSell.String())
	assert.Equal(t, "hold", SignalHold.String())
	assert.Equal(t, "invalid(7)", Signal(7).String())
}

func TestTradeHelpers(t *testing.T) {
	entry := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trade := Trade{EntryDate: entry, ExitDate: entry.AddDate(0, 0, 5), CashProfit: 42.5}

	assert.True(t, trade.IsWin())
	assert.Equal(t, 5, trade.HoldingDays())

	assert.False(t, Trade{CashProfit: -10}.IsWin())
	assert.False(t, Trade{CashProfit: 0}.IsWin())
}

func TestComponentError(t *testing.T) {
	inner := errors.New("boom")
	err := NewComponentError("engine", ReasonData, "bad bar", inner)

	assert.Equal(t, "engine: data_integrity_error: bad bar: boom", err.Error())
	assert.ErrorIs(t, err, inner)

	assert.True(t, IsReason(err, ReasonData))
	assert.False(t, IsReason(err, ReasonConfig))
	assert.False(t, IsReason(inner, ReasonData))
	assert.False(t, IsReason(nil, ReasonData))

	wrapped := fmt.Errorf("run failed: %w", err)
	assert.True(t, IsReason(wrapped, ReasonData))
}

func TestComponentErrorWithoutCause(t *testing.T) {
	err := NewComponentError("config", ReasonConfig, "unknown key", nil)
	assert.Equal(t, "config: configuration_error: unknown key", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

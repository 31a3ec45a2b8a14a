package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/crypto-backtester/internal/models"
)

func TestResolveRiskParametersDefaults(t *testing.T) {
	defaults := RiskParameters{StopLossPct: 0.05, TakeProfitPct: 0.10, TransactionFeePct: 0.001}

	resolved, err := ResolveRiskParameters(defaults, nil)
	require.NoError(t, err)
	assert.Equal(t, defaults, resolved)
}

func TestResolveRiskParametersOverrides(t *testing.T) {
	defaults := RiskParameters{StopLossPct: 0.05, TakeProfitPct: 0.10, TransactionFeePct: 0.001}

	overrides, err := OverridesFromMap(map[string]float64{
		"stop_loss_pct":   0.08,
		"take_profit_pct": 0,
	})
	require.NoError(t, err)

	resolved, err := ResolveRiskParameters(defaults, overrides)
	require.NoError(t, err)
	assert.Equal(t, 0.08, resolved.StopLossPct)
	assert.Equal(t, 0.0, resolved.TakeProfitPct)
	assert.Equal(t, 0.001, resolved.TransactionFeePct) // inherited

	assert.True(t, resolved.StopLossEnabled())
	assert.False(t, resolved.TakeProfitEnabled())
}

func TestOverridesFromMapUnknownKey(t *testing.T) {
	_, err := OverridesFromMap(map[string]float64{"max_drawdown_pct": 0.2})
	require.Error(t, err)
	assert.True(t, models.IsReason(err, models.ReasonConfig))
}

func TestOverridesFromMapEmpty(t *testing.T) {
	overrides, err := OverridesFromMap(nil)
	require.NoError(t, err)
	assert.Nil(t, overrides)
}

func TestRiskParametersValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  RiskParameters
		wantErr bool
	}{
		{"all zero disables exits", RiskParameters{}, false},
		{"typical values", RiskParameters{StopLossPct: 0.05, TakeProfitPct: 0.2, TransactionFeePct: 0.001}, false},
		{"stop loss at one", RiskParameters{StopLossPct: 1.0}, true},
		{"negative stop loss", RiskParameters{StopLossPct: -0.01}, true},
		{"negative take profit", RiskParameters{TakeProfitPct: -0.5}, true},
		{"fee above cap", RiskParameters{TransactionFeePct: 0.11}, true},
		{"nan stop loss", RiskParameters{StopLossPct: math.NaN()}, true},
		{"large take profit allowed", RiskParameters{TakeProfitPct: 5.0}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, models.IsReason(err, models.ReasonConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveRiskParametersInvalidOverride(t *testing.T) {
	defaults := RiskParameters{StopLossPct: 0.05}
	bad := 1.2
	_, err := ResolveRiskParameters(defaults, &RiskOverrides{StopLossPct: &bad})
	require.Error(t, err)
	assert.True(t, models.IsReason(err, models.ReasonConfig))
}

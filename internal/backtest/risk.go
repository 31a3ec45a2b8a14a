package backtest

import (
	"fmt"
	"math"

	"github.com/yourusername/crypto-backtester/internal/models"
)

// RiskParameters holds the exit thresholds and fee applied to one run.
// A zero value disables the corresponding exit type.
type RiskParameters struct {
	StopLossPct       float64 `json:"stop_loss_pct"`
	TakeProfitPct     float64 `json:"take_profit_pct"`
	TransactionFeePct float64 `json:"transaction_fee_pct"`
}

// RiskOverrides carries optional per-strategy replacements for the global
// defaults. A nil field inherits the default.
type RiskOverrides struct {
	StopLossPct       *float64 `mapstructure:"stop_loss_pct" json:"stop_loss_pct,omitempty"`
	TakeProfitPct     *float64 `mapstructure:"take_profit_pct" json:"take_profit_pct,omitempty"`
	TransactionFeePct *float64 `mapstructure:"transaction_fee_pct" json:"transaction_fee_pct,omitempty"`
}

// OverridesFromMap converts a per-strategy override map, as it appears in
// strategy configuration, into a typed RiskOverrides. Unknown keys fail fast.
func OverridesFromMap(m map[string]float64) (*RiskOverrides, error) {
	if len(m) == 0 {
		return nil, nil
	}
	overrides := &RiskOverrides{}
	for key, value := range m {
		v := value
		switch key {
		case "stop_loss_pct":
			overrides.StopLossPct = &v
		case "take_profit_pct":
			overrides.TakeProfitPct = &v
		case "transaction_fee_pct":
			overrides.TransactionFeePct = &v
		default:
			return nil, models.NewComponentError(
				"risk-resolution",
				models.ReasonConfig,
				fmt.Sprintf("unknown risk override field %q", key),
				nil,
			)
		}
	}
	return overrides, nil
}

// ResolveRiskParameters merges global defaults with optional strategy-level
// overrides into one immutable record, validating bounds eagerly.
func ResolveRiskParameters(defaults RiskParameters, overrides *RiskOverrides) (RiskParameters, error) {
	resolved := defaults
	if overrides != nil {
		if overrides.StopLossPct != nil {
			resolved.StopLossPct = *overrides.StopLossPct
		}
		if overrides.TakeProfitPct != nil {
			resolved.TakeProfitPct = *overrides.TakeProfitPct
		}
		if overrides.TransactionFeePct != nil {
			resolved.TransactionFeePct = *overrides.TransactionFeePct
		}
	}
	if err := resolved.Validate(); err != nil {
		return RiskParameters{}, err
	}
	return resolved, nil
}

// Validate checks the parameter bounds, naming the offending field
func (r RiskParameters) Validate() error {
	if math.IsNaN(r.StopLossPct) || r.StopLossPct < 0 || r.StopLossPct >= 1 {
		return riskConfigError("stop_loss_pct", r.StopLossPct, "must be in [0, 1)")
	}
	if math.IsNaN(r.TakeProfitPct) || r.TakeProfitPct < 0 {
		return riskConfigError("take_profit_pct", r.TakeProfitPct, "must be >= 0")
	}
	if math.IsNaN(r.TransactionFeePct) || r.TransactionFeePct < 0 || r.TransactionFeePct > 0.1 {
		return riskConfigError("transaction_fee_pct", r.TransactionFeePct, "must be in [0, 0.1]")
	}
	return nil
}

// StopLossEnabled reports whether a stop-loss threshold applies
func (r RiskParameters) StopLossEnabled() bool {
	return r.StopLossPct > 0
}

// TakeProfitEnabled reports whether a take-profit threshold applies
func (r RiskParameters) TakeProfitEnabled() bool {
	return r.TakeProfitPct > 0
}

func riskConfigError(field string, value float64, constraint string) error {
	return models.NewComponentError(
		"risk-resolution",
		models.ReasonConfig,
		fmt.Sprintf("field %s = %v %s", field, value, constraint),
		nil,
	)
}

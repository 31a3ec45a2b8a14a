package backtest

import (
	"fmt"
	"math"

	"github.com/yourusername/crypto-backtester/internal/config"
	"github.com/yourusername/crypto-backtester/internal/models"
)

// Config holds everything the engine needs for one run: the starting
// capital and the resolved risk parameters. Immutable for the run.
type Config struct {
	InitialCapital float64
	Risk           RiskParameters
}

// FromConfig converts app-level backtest settings plus an optional
// per-strategy override map into an engine run configuration
func FromConfig(cfg *config.BacktestConfig, riskOverrides map[string]float64) (Config, error) {
	if cfg == nil {
		return Config{}, models.NewComponentError("engine", models.ReasonConfig, "backtest config is required", nil)
	}

	defaults := RiskParameters{
		StopLossPct:       cfg.StopLossPct,
		TakeProfitPct:     cfg.TakeProfitPct,
		TransactionFeePct: cfg.TransactionFeePct,
	}
	overrides, err := OverridesFromMap(riskOverrides)
	if err != nil {
		return Config{}, err
	}
	risk, err := ResolveRiskParameters(defaults, overrides)
	if err != nil {
		return Config{}, err
	}

	runCfg := Config{
		InitialCapital: cfg.InitialCapital,
		Risk:           risk,
	}
	return runCfg, runCfg.Validate()
}

// Validate validates the run configuration
func (c Config) Validate() error {
	if math.IsNaN(c.InitialCapital) || math.IsInf(c.InitialCapital, 0) || c.InitialCapital <= 0 {
		return models.NewComponentError(
			"engine",
			models.ReasonConfig,
			fmt.Sprintf("initial capital %v must be positive and finite", c.InitialCapital),
			nil,
		)
	}
	return c.Risk.Validate()
}

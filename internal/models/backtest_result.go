package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestResult represents a persisted backtest run
type BacktestResult struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	StrategyName   string          `db:"strategy_name" json:"strategy_name"`
	Symbol         string          `db:"symbol" json:"symbol"`
	RunDate        time.Time       `db:"run_date" json:"run_date"`
	StartDate      time.Time       `db:"start_date" json:"start_date"`
	EndDate        time.Time       `db:"end_date" json:"end_date"`
	InitialCapital float64         `db:"initial_capital" json:"initial_capital"`
	FinalCapital   float64         `db:"final_capital" json:"final_capital"`
	TotalReturn    float64         `db:"total_return" json:"total_return"`
	CAGR           float64         `db:"cagr" json:"cagr"`
	SharpeRatio    float64         `db:"sharpe_ratio" json:"sharpe_ratio"`
	MaxDrawdown    float64         `db:"max_drawdown" json:"max_drawdown"`
	TotalTrades    int             `db:"total_trades" json:"total_trades"`
	WinRate        float64         `db:"win_rate" json:"win_rate"`
	ProfitFactor   float64         `db:"profit_factor" json:"profit_factor"`
	StopLossPct    float64         `db:"stop_loss_pct" json:"stop_loss_pct"`
	TakeProfitPct  float64         `db:"take_profit_pct" json:"take_profit_pct"`
	FeePct         float64         `db:"fee_pct" json:"fee_pct"`
	FullResults    json.RawMessage `db:"full_results" json:"full_results"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

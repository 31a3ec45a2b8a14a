package database

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS backtest_results (
	id UUID PRIMARY KEY,
	strategy_name TEXT NOT NULL,
	symbol TEXT NOT NULL,
	run_date TIMESTAMPTZ NOT NULL,
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ NOT NULL,
	initial_capital DOUBLE PRECISION NOT NULL,
	final_capital DOUBLE PRECISION NOT NULL,
	total_return DOUBLE PRECISION NOT NULL,
	cagr DOUBLE PRECISION NOT NULL,
	sharpe_ratio DOUBLE PRECISION NOT NULL,
	max_drawdown DOUBLE PRECISION NOT NULL,
	total_trades INTEGER NOT NULL,
	win_rate DOUBLE PRECISION NOT NULL,
	profit_factor DOUBLE PRECISION NOT NULL,
	stop_loss_pct DOUBLE PRECISION NOT NULL,
	take_profit_pct DOUBLE PRECISION NOT NULL,
	fee_pct DOUBLE PRECISION NOT NULL,
	full_results JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_backtest_results_strategy
	ON backtest_results (strategy_name, run_date DESC);

CREATE TABLE IF NOT EXISTS trades (
	id UUID PRIMARY KEY,
	run_id UUID NOT NULL REFERENCES backtest_results(id) ON DELETE CASCADE,
	entry_date TIMESTAMPTZ NOT NULL,
	exit_date TIMESTAMPTZ NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_price DOUBLE PRECISION NOT NULL,
	quantity DOUBLE PRECISION NOT NULL,
	cash_profit DOUBLE PRECISION NOT NULL,
	exit_reason TEXT NOT NULL,
	stop_loss_used DOUBLE PRECISION NOT NULL,
	take_profit_used DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades (run_id, entry_date);

CREATE TABLE IF NOT EXISTS equity_points (
	run_id UUID NOT NULL REFERENCES backtest_results(id) ON DELETE CASCADE,
	date TIMESTAMPTZ NOT NULL,
	total_capital DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, date)
);
`

// EnsureSchema creates the result tables when they do not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

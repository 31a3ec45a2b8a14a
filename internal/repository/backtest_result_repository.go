package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/crypto-backtester/internal/database"
	"github.com/yourusername/crypto-backtester/internal/models"
)

const backtestResultColumns = `
	id, strategy_name, symbol, run_date, start_date, end_date,
	initial_capital, final_capital, total_return, cagr, sharpe_ratio, max_drawdown,
	total_trades, win_rate, profit_factor, stop_loss_pct, take_profit_pct, fee_pct,
	full_results, created_at
`

// PostgresBacktestResultRepository implements BacktestResultRepository for PostgreSQL
type PostgresBacktestResultRepository struct {
	db *database.DB
}

// NewPostgresBacktestResultRepository creates a new backtest result repository
func NewPostgresBacktestResultRepository(db *database.DB) BacktestResultRepository {
	return &PostgresBacktestResultRepository{db: db}
}

// SaveResult inserts a backtest result
func (r *PostgresBacktestResultRepository) SaveResult(ctx context.Context, result *models.BacktestResult) error {
	query := `
		INSERT INTO backtest_results (` + backtestResultColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		result.ID, result.StrategyName, result.Symbol, result.RunDate, result.StartDate, result.EndDate,
		result.InitialCapital, result.FinalCapital, result.TotalReturn, result.CAGR, result.SharpeRatio, result.MaxDrawdown,
		result.TotalTrades, result.WinRate, result.ProfitFactor, result.StopLossPct, result.TakeProfitPct, result.FeePct,
		result.FullResults, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// GetByID retrieves one backtest result
func (r *PostgresBacktestResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error) {
	query := `SELECT ` + backtestResultColumns + ` FROM backtest_results WHERE id = $1`

	result := &models.BacktestResult{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&result.ID, &result.StrategyName, &result.Symbol, &result.RunDate, &result.StartDate, &result.EndDate,
		&result.InitialCapital, &result.FinalCapital, &result.TotalReturn, &result.CAGR, &result.SharpeRatio, &result.MaxDrawdown,
		&result.TotalTrades, &result.WinRate, &result.ProfitFactor, &result.StopLossPct, &result.TakeProfitPct, &result.FeePct,
		&result.FullResults, &result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest result: %w", err)
	}
	return result, nil
}

// GetByStrategyName retrieves results for one strategy, newest first
func (r *PostgresBacktestResultRepository) GetByStrategyName(ctx context.Context, strategyName string) ([]*models.BacktestResult, error) {
	query := `SELECT ` + backtestResultColumns + ` FROM backtest_results WHERE strategy_name = $1 ORDER BY run_date DESC`

	rows, err := r.db.GetPool().Query(ctx, query, strategyName)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest results: %w", err)
	}
	defer rows.Close()
	return scanBacktestResults(rows)
}

// GetLatest retrieves latest backtest results
func (r *PostgresBacktestResultRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestResult, error) {
	query := `SELECT ` + backtestResultColumns + ` FROM backtest_results ORDER BY run_date DESC LIMIT $1`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest results: %w", err)
	}
	defer rows.Close()
	return scanBacktestResults(rows)
}

func scanBacktestResults(rows pgx.Rows) ([]*models.BacktestResult, error) {
	var results []*models.BacktestResult
	for rows.Next() {
		result := &models.BacktestResult{}
		if err := rows.Scan(
			&result.ID, &result.StrategyName, &result.Symbol, &result.RunDate, &result.StartDate, &result.EndDate,
			&result.InitialCapital, &result.FinalCapital, &result.TotalReturn, &result.CAGR, &result.SharpeRatio, &result.MaxDrawdown,
			&result.TotalTrades, &result.WinRate, &result.ProfitFactor, &result.StopLossPct, &result.TakeProfitPct, &result.FeePct,
			&result.FullResults, &result.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backtest result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

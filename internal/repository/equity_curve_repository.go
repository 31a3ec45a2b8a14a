package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/crypto-backtester/internal/backtest"
	"github.com/yourusername/crypto-backtester/internal/database"
)

// PostgresEquityCurveRepository implements EquityCurveRepository for PostgreSQL
type PostgresEquityCurveRepository struct {
	db *database.DB
}

// NewPostgresEquityCurveRepository creates a new equity curve repository
func NewPostgresEquityCurveRepository(db *database.DB) EquityCurveRepository {
	return &PostgresEquityCurveRepository{db: db}
}

// SaveCurve bulk-inserts the per-bar equity points of one run
func (r *PostgresEquityCurveRepository) SaveCurve(ctx context.Context, runID uuid.UUID, curve backtest.EquityCurve) error {
	if len(curve) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(curve))
	for _, point := range curve {
		rows = append(rows, []any{runID, point.Date, point.TotalCapital})
	}

	_, err := r.db.GetPool().CopyFrom(ctx,
		pgx.Identifier{"equity_points"},
		[]string{"run_id", "date", "total_capital"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to save equity curve: %w", err)
	}
	return nil
}

// GetByRunID retrieves the equity curve of a run in date order
func (r *PostgresEquityCurveRepository) GetByRunID(ctx context.Context, runID uuid.UUID) (backtest.EquityCurve, error) {
	query := `SELECT date, total_capital FROM equity_points WHERE run_id = $1 ORDER BY date`

	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query equity curve: %w", err)
	}
	defer rows.Close()

	var curve backtest.EquityCurve
	for rows.Next() {
		var point backtest.EquityPoint
		if err := rows.Scan(&point.Date, &point.TotalCapital); err != nil {
			return nil, fmt.Errorf("failed to scan equity point: %w", err)
		}
		curve = append(curve, point)
	}
	return curve, rows.Err()
}

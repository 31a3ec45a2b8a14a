package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/crypto-backtester/internal/backtest"
	"github.com/yourusername/crypto-backtester/internal/models"
)

// BacktestResultRepository persists and retrieves run summaries
type BacktestResultRepository interface {
	SaveResult(ctx context.Context, result *models.BacktestResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error)
	GetByStrategyName(ctx context.Context, strategyName string) ([]*models.BacktestResult, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestResult, error)
}

// TradeRepository persists and retrieves the trade log of a run
type TradeRepository interface {
	SaveTrades(ctx context.Context, trades []models.Trade) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]models.Trade, error)
}

// EquityCurveRepository persists and retrieves per-bar equity points
type EquityCurveRepository interface {
	SaveCurve(ctx context.Context, runID uuid.UUID, curve backtest.EquityCurve) error
	GetByRunID(ctx context.Context, runID uuid.UUID) (backtest.EquityCurve, error)
}

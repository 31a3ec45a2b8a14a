package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/crypto-backtester/internal/database"
	"github.com/yourusername/crypto-backtester/internal/models"
)

// PostgresTradeRepository implements TradeRepository for PostgreSQL
type PostgresTradeRepository struct {
	db *database.DB
}

// NewPostgresTradeRepository creates a new trade repository
func NewPostgresTradeRepository(db *database.DB) TradeRepository {
	return &PostgresTradeRepository{db: db}
}

// SaveTrades batch-inserts the trade log of one run
func (r *PostgresTradeRepository) SaveTrades(ctx context.Context, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO trades (
			id, run_id, entry_date, exit_date, entry_price, exit_price,
			quantity, cash_profit, exit_reason, stop_loss_used, take_profit_used
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	for _, trade := range trades {
		batch.Queue(query,
			trade.ID, trade.RunID, trade.EntryDate, trade.ExitDate, trade.EntryPrice, trade.ExitPrice,
			trade.Quantity, trade.CashProfit, string(trade.ExitReason), trade.StopLossUsed, trade.TakeProfitUsed,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()
	for range trades {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save trades: %w", err)
		}
	}
	return nil
}

// GetByRunID retrieves all trades of a run in entry order
func (r *PostgresTradeRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]models.Trade, error) {
	query := `
		SELECT id, run_id, entry_date, exit_date, entry_price, exit_price,
			quantity, cash_profit, exit_reason, stop_loss_used, take_profit_used
		FROM trades WHERE run_id = $1 ORDER BY entry_date
	`
	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var trade models.Trade
		var reason string
		if err := rows.Scan(
			&trade.ID, &trade.RunID, &trade.EntryDate, &trade.ExitDate, &trade.EntryPrice, &trade.ExitPrice,
			&trade.Quantity, &trade.CashProfit, &reason, &trade.StopLossUsed, &trade.TakeProfitUsed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trade.ExitReason = models.ExitReason(reason)
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

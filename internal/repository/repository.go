package repository

import (
	"fmt"

	"github.com/yourusername/crypto-backtester/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	BacktestResult BacktestResultRepository
	Trade          TradeRepository
	EquityCurve    EquityCurveRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		BacktestResult: NewPostgresBacktestResultRepository(db),
		Trade:          NewPostgresTradeRepository(db),
		EquityCurve:    NewPostgresEquityCurveRepository(db),
	}, nil
}

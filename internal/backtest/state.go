package backtest

import (
	"time"

	"github.com/yourusername/crypto-backtester/internal/models"
)

// Position represents the single open position of a run. It is created on
// entry and consumed on exit, never partially modified.
type Position struct {
	EntryDate       time.Time
	EntryPrice      float64
	Quantity        float64
	CostBasis       float64
	StopLossPrice   float64
	TakeProfitPrice float64
	FeePctApplied   float64
}

// PortfolioState tracks the mutable state of one backtest run
type PortfolioState struct {
	Cash        float64
	Position    *Position
	EquityCurve EquityCurve
	Trades      []models.Trade
}

// NewPortfolioState initializes a flat portfolio with the starting capital
func NewPortfolioState(initialCapital float64) *PortfolioState {
	return &PortfolioState{
		Cash:        initialCapital,
		EquityCurve: EquityCurve{},
		Trades:      []models.Trade{},
	}
}

// InPosition reports whether a position is currently open
func (s *PortfolioState) InPosition() bool {
	return s.Position != nil
}

// TotalCapital values the portfolio at the given price, marking any open
// position to market
func (s *PortfolioState) TotalCapital(price float64) float64 {
	if s.Position == nil {
		return s.Cash
	}
	return s.Cash + s.Position.Quantity*price
}

// RecordEquityPoint appends one equity-curve point. Called exactly once per
// bar, after any transition on that bar.
func (s *PortfolioState) RecordEquityPoint(date time.Time, closePrice float64) {
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Date:         date,
		TotalCapital: s.TotalCapital(closePrice),
	})
}

// RealizedProfit sums cash profit over all closed trades
func (s *PortfolioState) RealizedProfit() float64 {
	total := 0.0
	for _, trade := range s.Trades {
		total += trade.CashProfit
	}
	return total
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ExitReason describes why a position was closed
type ExitReason string

const (
	ExitReasonStopLoss   ExitReason = "Stop-loss triggered"
	ExitReasonTakeProfit ExitReason = "Take-profit triggered"
	ExitReasonSignal     ExitReason = "Signal exit"
)

// Trade represents one completed (opened and closed) position
type Trade struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	RunID          uuid.UUID  `db:"run_id" json:"run_id"`
	EntryDate      time.Time  `db:"entry_date" json:"entry_date"`
	ExitDate       time.Time  `db:"exit_date" json:"exit_date"`
	EntryPrice     float64    `db:"entry_price" json:"entry_price"`
	ExitPrice      float64    `db:"exit_price" json:"exit_price"`
	Quantity       float64    `db:"quantity" json:"quantity"`
	CashProfit     float64    `db:"cash_profit" json:"cash_profit"`
	ExitReason     ExitReason `db:"exit_reason" json:"exit_reason"`
	StopLossUsed   float64    `db:"stop_loss_used" json:"stop_loss_used"`
	TakeProfitUsed float64    `db:"take_profit_used" json:"take_profit_used"`
}

// IsWin reports whether the trade closed with a positive cash profit
func (t Trade) IsWin() bool {
	return t.CashProfit > 0
}

// HoldingDays returns the number of days the position was held
func (t Trade) HoldingDays() int {
	return int(t.ExitDate.Sub(t.EntryDate).Hours() / 24)
}

// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for capital-affecting events.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPositionOpened logs a position entry event.
func (al *AuditLogger) LogPositionOpened(runID, strategyName string, entryDate time.Time, entryPrice, quantity, costBasis float64) {
	al.WithFields(logrus.Fields{
		"run_id":      runID,
		"strategy":    strategyName,
		"entry_date":  entryDate.Format("2006-01-02"),
		"entry_price": entryPrice,
		"quantity":    quantity,
		"cost_basis":  costBasis,
	}).Info("Position opened")
}

// LogPositionClosed logs a position exit event.
func (al *AuditLogger) LogPositionClosed(runID, strategyName string, exitDate time.Time, exitPrice, cashProfit float64, exitReason string) {
	al.WithFields(logrus.Fields{
		"run_id":      runID,
		"strategy":    strategyName,
		"exit_date":   exitDate.Format("2006-01-02"),
		"exit_price":  exitPrice,
		"cash_profit": cashProfit,
		"exit_reason": exitReason,
	}).Info("Position closed")
}

// LogRunCompleted logs the summary of one backtest run.
func (al *AuditLogger) LogRunCompleted(runID, strategyName string, trades int, initialCapital, finalEquity float64, openPosition bool) {
	al.WithFields(logrus.Fields{
		"run_id":          runID,
		"strategy":        strategyName,
		"trades":          trades,
		"initial_capital": initialCapital,
		"final_equity":    finalEquity,
		"open_position":   openPosition,
	}).Info("Backtest run completed")
}

// LogRunAborted logs a run that failed before producing valid output.
func (al *AuditLogger) LogRunAborted(strategyName, reason string, err error) {
	al.WithFields(logrus.Fields{
		"strategy": strategyName,
		"reason":   reason,
		"error":    err,
	}).Error("Backtest run aborted")
}

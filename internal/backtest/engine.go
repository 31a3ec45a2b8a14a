package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/crypto-backtester/internal/models"
)

// Input bundles the three aligned series consumed by one run. Signals and
// Sizes are produced upstream and never mutated by the engine.
type Input struct {
	StrategyName string
	Symbol       string
	Candles      []models.Candle
	Signals      []models.Signal
	Sizes        []float64
}

// Result holds everything a run emits: the equity curve, the trade log and
// the resolved risk parameters echoed back for reporting.
type Result struct {
	RunID          uuid.UUID
	StrategyName   string
	Symbol         string
	InitialCapital float64
	FinalCash      float64
	FinalEquity    float64
	EquityCurve    EquityCurve
	Trades         []models.Trade
	Risk           RiskParameters
	// OpenPosition is non-nil when a position was still held after the last
	// bar. It is valued in FinalEquity at the last close but never realized
	// into the trade log.
	OpenPosition *Position
}

// Engine executes a trading strategy against historical bars, producing a
// deterministic capital trajectory and trade audit trail. One engine value
// may run many independent backtests; each run owns its own state.
type Engine struct {
	config Config
	logger *logrus.Logger
}

// NewEngine creates a backtest engine for the given run configuration
func NewEngine(cfg Config, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{config: cfg, logger: logger}, nil
}

// Config returns the engine's run configuration
func (e *Engine) Config() Config {
	return e.config
}

// Run replays the input series bar by bar. Exits are evaluated in a fixed
// priority order on every bar: stop-loss, then take-profit, then signal
// exit, then signal entry. Equity is recorded once per bar from the
// post-transition state at that bar's close.
func (e *Engine) Run(input Input) (*Result, error) {
	if err := e.validateInput(input); err != nil {
		return nil, err
	}

	runID := uuid.New()
	state := NewPortfolioState(e.config.InitialCapital)
	risk := e.config.Risk

	e.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"strategy": input.StrategyName,
		"bars":     len(input.Candles),
		"capital":  e.config.InitialCapital,
	}).Info("Starting backtest run")

	var prevDate time.Time
	for i, candle := range input.Candles {
		if err := e.validateBar(i, candle, input.Signals[i], input.Sizes[i]); err != nil {
			return nil, err
		}
		if i > 0 && !candle.Date.After(prevDate) {
			return nil, e.dataError(i, candle.Date, fmt.Errorf("date not strictly after previous bar %s", prevDate.Format("2006-01-02")))
		}
		prevDate = candle.Date
		if err := e.processBar(runID, state, candle, input.Signals[i], input.Sizes[i]); err != nil {
			return nil, err
		}
		state.RecordEquityPoint(candle.Date, candle.Close)
	}

	lastClose := input.Candles[len(input.Candles)-1].Close
	result := &Result{
		RunID:          runID,
		StrategyName:   input.StrategyName,
		Symbol:         input.Symbol,
		InitialCapital: e.config.InitialCapital,
		FinalCash:      state.Cash,
		FinalEquity:    state.TotalCapital(lastClose),
		EquityCurve:    state.EquityCurve,
		Trades:         state.Trades,
		Risk:           risk,
		OpenPosition:   state.Position,
	}

	e.logger.WithFields(logrus.Fields{
		"run_id":       runID,
		"trades":       len(result.Trades),
		"realized":     state.RealizedProfit(),
		"final_equity": result.FinalEquity,
		"open":         result.OpenPosition != nil,
	}).Info("Backtest run completed")

	return result, nil
}

// processBar applies the per-bar transition function in priority order
func (e *Engine) processBar(runID uuid.UUID, state *PortfolioState, candle models.Candle, signal models.Signal, size float64) error {
	risk := e.config.Risk

	// 1. Risk exits, stop-loss strictly before take-profit.
	if state.InPosition() {
		pos := state.Position
		if risk.StopLossEnabled() && candle.Low <= pos.StopLossPrice {
			e.closePosition(runID, state, candle.Date, pos.StopLossPrice, models.ExitReasonStopLoss)
		} else if risk.TakeProfitEnabled() && candle.High >= pos.TakeProfitPrice {
			e.closePosition(runID, state, candle.Date, pos.TakeProfitPrice, models.ExitReasonTakeProfit)
		}
	}

	// 2. Signal exit at the close. A sell while flat is a no-op.
	if state.InPosition() && signal == models.SignalSell {
		e.closePosition(runID, state, candle.Date, candle.Close, models.ExitReasonSignal)
	}

	// 3. Signal entry at the close. A buy while still long is a no-op, as is
	// a zero size fraction.
	if !state.InPosition() && signal == models.SignalBuy && size > 0 {
		if err := e.openPosition(state, candle, size); err != nil {
			return err
		}
	}

	return nil
}

// openPosition commits size% of current cash at the bar's close price
func (e *Engine) openPosition(state *PortfolioState, candle models.Candle, size float64) error {
	risk := e.config.Risk
	price := candle.Close

	allocated := state.Cash * (size / 100.0)
	entryFee := allocated * risk.TransactionFeePct
	quantity := (allocated - entryFee) / price

	remaining := state.Cash - allocated
	if remaining < 0 {
		return models.NewComponentError(
			"engine",
			models.ReasonInvariant,
			fmt.Sprintf("entry on %s would leave negative cash %.8f", candle.Date.Format("2006-01-02"), remaining),
			nil,
		)
	}

	state.Cash = remaining
	state.Position = &Position{
		EntryDate:       candle.Date,
		EntryPrice:      price,
		Quantity:        quantity,
		CostBasis:       allocated,
		StopLossPrice:   price * (1 - risk.StopLossPct),
		TakeProfitPrice: price * (1 + risk.TakeProfitPct),
		FeePctApplied:   risk.TransactionFeePct,
	}

	e.logger.WithFields(logrus.Fields{
		"date":     candle.Date.Format("2006-01-02"),
		"price":    price,
		"quantity": quantity,
		"cost":     allocated,
	}).Debug("Opened position")

	return nil
}

// closePosition realizes the open position at the given price and appends
// the trade-log entry
func (e *Engine) closePosition(runID uuid.UUID, state *PortfolioState, date time.Time, price float64, reason models.ExitReason) {
	pos := state.Position
	risk := e.config.Risk

	grossProceeds := pos.Quantity * price
	exitFee := grossProceeds * pos.FeePctApplied
	netProceeds := grossProceeds - exitFee

	state.Cash += netProceeds
	state.Trades = append(state.Trades, models.Trade{
		ID:             uuid.New(),
		RunID:          runID,
		EntryDate:      pos.EntryDate,
		ExitDate:       date,
		EntryPrice:     pos.EntryPrice,
		ExitPrice:      price,
		Quantity:       pos.Quantity,
		CashProfit:     netProceeds - pos.CostBasis,
		ExitReason:     reason,
		StopLossUsed:   risk.StopLossPct,
		TakeProfitUsed: risk.TakeProfitPct,
	})
	state.Position = nil

	e.logger.WithFields(logrus.Fields{
		"date":   date.Format("2006-01-02"),
		"price":  price,
		"reason": reason,
		"profit": netProceeds - pos.CostBasis,
	}).Debug("Closed position")
}

// validateInput rejects misaligned or empty series before the first bar
func (e *Engine) validateInput(input Input) error {
	if len(input.Candles) == 0 {
		return models.NewComponentError("engine", models.ReasonConfig, "price series must not be empty", models.ErrEmptySeries)
	}
	if len(input.Signals) != len(input.Candles) {
		return models.NewComponentError(
			"engine",
			models.ReasonData,
			fmt.Sprintf("signal series length %d does not match %d price bars", len(input.Signals), len(input.Candles)),
			nil,
		)
	}
	if len(input.Sizes) != len(input.Candles) {
		return models.NewComponentError(
			"engine",
			models.ReasonData,
			fmt.Sprintf("size series length %d does not match %d price bars", len(input.Sizes), len(input.Candles)),
			nil,
		)
	}
	return nil
}

// validateBar rejects corrupt per-bar values, identifying the offending bar
func (e *Engine) validateBar(index int, candle models.Candle, signal models.Signal, size float64) error {
	if err := candle.Validate(); err != nil {
		return e.dataError(index, candle.Date, err)
	}
	if !signal.Valid() {
		return e.dataError(index, candle.Date, fmt.Errorf("invalid signal value %d", int8(signal)))
	}
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 || size > 100 {
		return e.dataError(index, candle.Date, fmt.Errorf("size fraction %v outside [0, 100]", size))
	}
	return nil
}

func (e *Engine) dataError(index int, date time.Time, err error) error {
	return models.NewComponentError(
		"engine",
		models.ReasonData,
		fmt.Sprintf("bar %d (%s)", index, date.Format("2006-01-02")),
		err,
	)
}

// Package sellrules evaluates open positions against a fixed
// priority-ordered set of exit rules.
package sellrules

import (
	"fmt"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// Engine holds the exit thresholds for one strategy.
type Engine struct {
	StopLossPct   float64
	TakeProfitPct float64
	MaxHoldDays   int
}

// NewEngine builds an Engine from a strategy configuration.
func NewEngine(strategy model.StrategyConfig) *Engine {
	return &Engine{
		StopLossPct:   strategy.StopLossPct,
		TakeProfitPct: strategy.TakeProfitPct,
		MaxHoldDays:   strategy.MaxHoldDays,
	}
}

// Evaluate checks one position against the rules in priority order:
// stop-loss, take-profit, hold-period. First match wins; a position never
// triggers more than one rule per pass. Returns nil when no rule fires or
// the snapshot is unusable (non-positive price, quantity, or entry).
func (e *Engine) Evaluate(pos model.Position, currentPrice float64, today time.Time) *model.SellSignal {
	if currentPrice <= 0 || pos.Quantity <= 0 || pos.AvgBuyPrice <= 0 {
		return nil
	}

	returnPct := (currentPrice - pos.AvgBuyPrice) / pos.AvgBuyPrice * 100
	daysHeld := 0
	if !pos.OpenedAt.IsZero() {
		daysHeld = int(today.Truncate(24*time.Hour).Sub(pos.OpenedAt.Truncate(24*time.Hour)).Hours() / 24)
	}

	signal := &model.SellSignal{
		Ticker:       pos.Ticker,
		ReturnPct:    returnPct,
		DaysHeld:     daysHeld,
		TriggerPrice: currentPrice,
		Quantity:     pos.Quantity,
		AccountID:    pos.AccountID,
	}

	switch {
	case returnPct <= -e.StopLossPct:
		signal.Rule = model.RuleStopLoss
		signal.Reasoning = fmt.Sprintf("Stop-loss: %.1f%% (threshold: -%.1f%%)", returnPct, e.StopLossPct)
	case returnPct >= e.TakeProfitPct:
		signal.Rule = model.RuleTakeProfit
		signal.Reasoning = fmt.Sprintf("Take-profit: +%.1f%% (threshold: +%.1f%%)", returnPct, e.TakeProfitPct)
	case !pos.OpenedAt.IsZero() && daysHeld >= e.MaxHoldDays:
		signal.Rule = model.RuleHoldPeriod
		signal.Reasoning = fmt.Sprintf("Hold-period: %d days (max: %d)", daysHeld, e.MaxHoldDays)
	default:
		return nil
	}
	return signal
}

// EvaluateAll runs Evaluate over a position snapshot. Positions without a
// quote are skipped.
func (e *Engine) EvaluateAll(positions []model.Position, prices map[string]float64, today time.Time) []model.SellSignal {
	var signals []model.SellSignal
	for _, pos := range positions {
		price, ok := prices[pos.Ticker]
		if !ok {
			continue
		}
		if sig := e.Evaluate(pos, price, today); sig != nil {
			signals = append(signals, *sig)
		}
	}
	return signals
}

// Package executor spends a fixed budget across a ranked pick list,
// sequentially, with per-pick fallback.
package executor

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/broker"
	"github.com/thecr7guy2/agent-trading/internal/cooldown"
	"github.com/thecr7guy2/agent-trading/internal/model"
)

// Executor submits buy orders for one strategy. It is intentionally not
// parallel: remaining budget is shared mutable state and outcomes are
// order dependent.
type Executor struct {
	broker   broker.Broker
	cooldown *cooldown.Tracker
	strategy model.StrategyConfig
	now      func() time.Time
}

// New creates an Executor bound to one strategy configuration.
func New(b broker.Broker, cd *cooldown.Tracker, strategy model.StrategyConfig) *Executor {
	return &Executor{broker: b, cooldown: cd, strategy: strategy, now: time.Now}
}

// Execute walks the ranked picks in order, spending at most the
// effective budget: the configured budget capped by the account's
// available cash (if the cash lookup fails, the configured budget
// stands). Per pick: resolve tradability, size the order as
// min(remaining, effective × allocation), submit, and on any venue
// error fall through to the next pick without retrying. Successful buys
// are recorded in the cooldown tracker immediately, so an aborted cycle
// never blacklists an unsubmitted order.
func (e *Executor) Execute(ctx context.Context, picks []model.Pick, budget float64) *model.ExecutionSummary {
	summary := &model.ExecutionSummary{
		Strategy: e.strategy.Name,
		Budget:   budget,
	}

	effective := budget
	if cash, err := e.broker.AvailableCash(ctx, e.strategy.AccountID); err != nil {
		log.Printf("[WARN] %s: cash balance unavailable, using configured budget %.2f: %v", e.strategy.Name, budget, err)
	} else {
		summary.AvailableCash = cash
		if cash < effective {
			effective = cash
		}
		if effective < 0 {
			effective = 0
		}
		log.Printf("[INFO] %s: budget %.2f, cash %.2f, effective %.2f", e.strategy.Name, budget, cash, effective)
	}

	remaining := effective
	attempts := 0
	seen := map[string]bool{}

	for _, pick := range picks {
		if remaining < e.strategy.MinTradeUnit {
			log.Printf("[INFO] %s: budget exhausted (%.2f spent of %.2f)", e.strategy.Name, summary.TotalSpent, effective)
			break
		}
		if e.strategy.MaxPicks > 0 && attempts >= e.strategy.MaxPicks {
			log.Printf("[INFO] %s: attempt cap %d reached", e.strategy.Name, e.strategy.MaxPicks)
			break
		}
		if ctx.Err() != nil {
			log.Printf("[WARN] %s: cycle aborted mid-run: %v", e.strategy.Name, ctx.Err())
			break
		}

		ticker := strings.ToUpper(strings.TrimSpace(pick.Ticker))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		target := remaining
		if pick.AllocationPct > 0 {
			requested := effective * pick.AllocationPct / 100
			if requested < target {
				target = requested
			}
		}
		if target < e.strategy.MinTradeUnit {
			summary.Skipped = append(summary.Skipped, model.TradeResult{
				Ticker: ticker,
				Error:  "allocation below minimum trade unit",
			})
			continue
		}

		attempts++
		result := e.tryBuy(ctx, ticker, target)
		if result.Error != "" {
			summary.Failed = append(summary.Failed, result)
			log.Printf("[WARN] ✗ %s: %s — %s", e.strategy.Name, ticker, result.Error)
			continue
		}

		remaining -= result.Spent
		summary.TotalSpent += result.Spent
		summary.Bought = append(summary.Bought, result)
		log.Printf("[INFO] ✓ %s: bought %s for %.2f (total %.2f / %.2f)",
			e.strategy.Name, ticker, result.Spent, summary.TotalSpent, effective)

		if err := e.cooldown.Record(ticker, e.now()); err != nil {
			log.Printf("[ERROR] record cooldown for %s: %v", ticker, err)
		}
	}

	return summary
}

// tryBuy attempts a single order. All failures come back as a TradeResult
// with Error set; nothing here aborts the run.
func (e *Executor) tryBuy(ctx context.Context, ticker string, amount float64) model.TradeResult {
	brokerTicker, err := e.broker.ResolveTicker(ctx, ticker)
	if err != nil {
		return model.TradeResult{Ticker: ticker, Error: "tradability unresolved: " + err.Error()}
	}
	if brokerTicker == "" {
		return model.TradeResult{Ticker: ticker, Error: "not tradable"}
	}

	price, err := e.broker.CurrentPrice(ctx, ticker)
	if err != nil || price <= 0 {
		return model.TradeResult{Ticker: ticker, BrokerTicker: brokerTicker, Error: "no valid price"}
	}

	quantity := amount / price
	fill, err := e.broker.PlaceMarketOrder(ctx, e.strategy.AccountID, brokerTicker, quantity)
	if err != nil {
		var orderErr *broker.OrderError
		if errors.As(err, &orderErr) {
			return model.TradeResult{Ticker: ticker, BrokerTicker: brokerTicker, Error: orderErr.Error()}
		}
		return model.TradeResult{Ticker: ticker, BrokerTicker: brokerTicker, Error: err.Error()}
	}

	return model.TradeResult{
		Ticker:       ticker,
		BrokerTicker: brokerTicker,
		Spent:        fill.Value,
		Quantity:     fill.Quantity,
		OrderID:      fill.OrderID,
	}
}

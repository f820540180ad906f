package model

import "time"

// SellRule identifies which exit rule fired for a position.
type SellRule string

const (
	RuleStopLoss   SellRule = "STOP_LOSS"
	RuleTakeProfit SellRule = "TAKE_PROFIT"
	RuleHoldPeriod SellRule = "HOLD_PERIOD"
)

// Position is a read-only snapshot of an open broker position.
type Position struct {
	Ticker      string    `json:"ticker"`
	Quantity    float64   `json:"quantity"`
	AvgBuyPrice float64   `json:"avg_buy_price"`
	OpenedAt    time.Time `json:"opened_at"`
	AccountID   string    `json:"account_id"`
}

// SellSignal is emitted by the sell-rule engine. At most one per position
// per evaluation pass.
type SellSignal struct {
	Ticker       string   `json:"ticker"`
	Rule         SellRule `json:"rule"`
	ReturnPct    float64  `json:"return_pct"`
	DaysHeld     int      `json:"days_held"`
	TriggerPrice float64  `json:"trigger_price"`
	Quantity     float64  `json:"quantity"`
	AccountID    string   `json:"account_id"`
	Reasoning    string   `json:"reasoning"`
}

// TradeResult records one executor attempt, successful or not.
type TradeResult struct {
	Ticker       string  `json:"ticker"`
	BrokerTicker string  `json:"broker_ticker,omitempty"`
	Spent        float64 `json:"spent"`
	Quantity     float64 `json:"quantity"`
	OrderID      string  `json:"order_id,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// ExecutionSummary is the structured result of one executor run.
type ExecutionSummary struct {
	Strategy      string        `json:"strategy"`
	Budget        float64       `json:"budget"`
	AvailableCash float64       `json:"available_cash,omitempty"`
	TotalSpent    float64       `json:"total_spent"`
	Bought        []TradeResult `json:"bought"`
	Failed        []TradeResult `json:"failed"`
	Skipped       []TradeResult `json:"skipped"`
}

// BudgetUtilisationPct returns spent/budget as a percentage.
func (s *ExecutionSummary) BudgetUtilisationPct() float64 {
	if s.Budget <= 0 {
		return 0
	}
	return s.TotalSpent / s.Budget * 100
}

// Cycle statuses for CycleReport.
const (
	CycleOK      = "ok"
	CycleSkipped = "skipped"
	CycleError   = "error"
)

// CycleReport is the user-visible outcome of one decision cycle,
// regardless of partial failure.
type CycleReport struct {
	RunID      string              `json:"run_id"`
	Date       time.Time           `json:"date"`
	Status     string              `json:"status"`
	Reason     string              `json:"reason,omitempty"`
	Candidates []Candidate         `json:"candidates,omitempty"`
	Picks      []Pick              `json:"picks,omitempty"`
	Executions []*ExecutionSummary `json:"executions,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

// StrategyConfig parameterizes one trading strategy variant. Near-duplicate
// strategies differ only in budget, risk thresholds, and target account;
// the executor and sell engine consume this uniformly.
type StrategyConfig struct {
	Name          string  `yaml:"name" json:"name"`
	AccountID     string  `yaml:"account_id" json:"account_id"`
	BudgetPerRun  float64 `yaml:"budget_per_run" json:"budget_per_run"`
	MaxPicks      int     `yaml:"max_picks" json:"max_picks"`
	MinTradeUnit  float64 `yaml:"min_trade_unit" json:"min_trade_unit"`
	StopLossPct   float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TakeProfitPct float64 `yaml:"take_profit_pct" json:"take_profit_pct"`
	MaxHoldDays   int     `yaml:"max_hold_days" json:"max_hold_days"`
}

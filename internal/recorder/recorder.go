package recorder

import "github.com/thecr7guy2/agent-trading/internal/model"

// Recorder persists cycle history for later analysis.
type Recorder interface {
	RecordCycle(report *model.CycleReport) error
	RecordTrades(runID, strategy string, summary *model.ExecutionSummary) error
	RecordSellSignals(strategy string, signals []model.SellSignal) error
	Close() error
}

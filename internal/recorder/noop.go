package recorder

import "github.com/thecr7guy2/agent-trading/internal/model"

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *model.CycleReport) error { return nil }

func (n *NoopRecorder) RecordTrades(_, _ string, _ *model.ExecutionSummary) error { return nil }

func (n *NoopRecorder) RecordSellSignals(_ string, _ []model.SellSignal) error { return nil }

func (n *NoopRecorder) Close() error { return nil }

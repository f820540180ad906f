package model

import "time"

// BuyEvent is a single observed insider purchase. Immutable once parsed
// by a source; a newly opened position carries DeltaOwnPct = 100.
type BuyEvent struct {
	Ticker      string    `json:"ticker"`
	Company     string    `json:"company,omitempty"`
	InsiderName string    `json:"insider_name"`
	Title       string    `json:"title"`
	DeltaOwnPct float64   `json:"delta_own_pct"`
	TradeDate   time.Time `json:"trade_date"`
	ValueUSD    float64   `json:"value_usd"`
}

// SourceHit is one ticker surfaced by a signal source, with the source's
// own ranking (0 = strongest) and a short evidence string.
type SourceHit struct {
	Ticker   string  `json:"ticker"`
	Rank     int     `json:"rank"`
	Score    float64 `json:"score,omitempty"`
	Evidence string  `json:"evidence,omitempty"`
}

// SourceRef records which source surfaced a candidate and why.
type SourceRef struct {
	Name     string  `json:"name"`
	Rank     int     `json:"rank"`
	Score    float64 `json:"score,omitempty"`
	Evidence string  `json:"evidence,omitempty"`
}

// Headline is a single enrichment news item.
type Headline struct {
	Title       string    `json:"title"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// Candidate is a merged, ranked ticker handed to the decision stage.
// Read-only once built by the merger.
type Candidate struct {
	Ticker    string      `json:"ticker"`
	Score     float64     `json:"score"`
	Sources   []SourceRef `json:"sources"`
	Headlines []Headline  `json:"headlines,omitempty"`
}

// MultiSource reports whether the candidate was surfaced by 2+ sources.
func (c *Candidate) MultiSource() bool { return len(c.Sources) >= 2 }

// Pick is one entry of the decision stage's ranked output.
type Pick struct {
	Ticker        string  `json:"ticker"`
	AllocationPct float64 `json:"allocation_pct"` // share of the run budget
	Rank          int     `json:"rank"`
	Reasoning     string  `json:"reasoning,omitempty"`
}

// Package collector provides the concrete signal feeds and the headline
// enricher consumed by the merger. Feeds speak JSON APIs only; filings and
// HTML parsing live behind the EventSource boundary.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/conviction"
	"github.com/thecr7guy2/agent-trading/internal/model"
)

// EventSource supplies raw insider buy events for the lookback window.
type EventSource interface {
	RecentBuys(ctx context.Context, lookbackDays int) ([]model.BuyEvent, error)
	Name() string
}

// InsiderFeed scores raw buy events into ranked hits. Only tickers that
// pass the scorer's inclusion rule surface at all.
type InsiderFeed struct {
	source EventSource
	scorer *conviction.Scorer
	now    func() time.Time
}

// NewInsiderFeed wires an event source to a conviction scorer.
func NewInsiderFeed(source EventSource, scorer *conviction.Scorer) *InsiderFeed {
	return &InsiderFeed{source: source, scorer: scorer, now: time.Now}
}

func (f *InsiderFeed) Name() string { return "insider" }

func (f *InsiderFeed) Fetch(ctx context.Context) ([]model.SourceHit, error) {
	events, err := f.source.RecentBuys(ctx, f.scorer.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch insider buys: %w", err)
	}

	scored := f.scorer.Score(events, f.now())
	hits := make([]model.SourceHit, 0, len(scored))
	for i, ts := range scored {
		if !ValidTicker(ts.Ticker) {
			continue
		}
		hits = append(hits, model.SourceHit{
			Ticker: ts.Ticker,
			Rank:   i,
			Score:  ts.Score,
			Evidence: fmt.Sprintf("%d insider(s), conviction %.1f, max Δown %.1f%%",
				len(ts.Insiders), ts.Score, ts.MaxDeltaOwn),
		})
	}
	return hits, nil
}

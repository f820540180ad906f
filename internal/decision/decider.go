// Package decision is the boundary to the external pick-selection stage.
// The production decider is a generative-model pipeline living outside
// this repo; RankDecider is the deterministic fallback used when it is
// unavailable and in dry runs.
package decision

import (
	"context"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// Decider turns the merged candidate list plus current portfolio and
// budget into a ranked pick list.
type Decider interface {
	Name() string
	Decide(ctx context.Context, candidates []model.Candidate, portfolio []model.Position, budget float64) ([]model.Pick, error)
}

// RankDecider picks the top candidates by merge order, skipping tickers
// already held, and splits the budget evenly across them.
type RankDecider struct {
	MaxPicks int
}

// NewRankDecider creates a RankDecider taking at most maxPicks picks.
func NewRankDecider(maxPicks int) *RankDecider {
	if maxPicks <= 0 {
		maxPicks = 5
	}
	return &RankDecider{MaxPicks: maxPicks}
}

func (d *RankDecider) Name() string { return "rank" }

func (d *RankDecider) Decide(_ context.Context, candidates []model.Candidate, portfolio []model.Position, _ float64) ([]model.Pick, error) {
	held := map[string]bool{}
	for _, pos := range portfolio {
		held[pos.Ticker] = true
	}

	var picks []model.Pick
	for _, c := range candidates {
		if len(picks) >= d.MaxPicks {
			break
		}
		if held[c.Ticker] {
			continue
		}
		picks = append(picks, model.Pick{
			Ticker:    c.Ticker,
			Rank:      len(picks),
			Reasoning: "top merged candidate",
		})
	}

	if len(picks) > 0 {
		share := 100.0 / float64(len(picks))
		for i := range picks {
			picks[i].AllocationPct = share
		}
	}
	return picks, nil
}

// Package conviction turns raw insider buy events into per-ticker
// aggregate conviction scores and an inclusion decision.
package conviction

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// csuiteTitles carries the multiplied titles. Matching is substring based:
// OpenInsider reports combined titles like "CEO, Chairman" or "Pres, CEO".
var csuiteTitles = []string{"CEO", "CFO", "COO", "PRESIDENT", "PRES", "CTO", "CHAIRMAN", "CHMN"}

const (
	csuiteMultiplier  = 3.0
	defaultMultiplier = 1.0
)

// IsCSuite reports whether an insider title belongs to the C-suite set.
func IsCSuite(title string) bool {
	upper := strings.ToUpper(title)
	for _, t := range csuiteTitles {
		if strings.Contains(upper, t) {
			return true
		}
	}
	return false
}

// TickerScore is the aggregate conviction for one ticker.
type TickerScore struct {
	Ticker        string
	Score         float64
	Insiders      []string
	CSuitePresent bool
	MaxDeltaOwn   float64
	LastTradeDate time.Time
	Events        []model.BuyEvent
}

// Scorer computes conviction scores over a lookback window.
type Scorer struct {
	DecayRate            float64 // default 0.2
	LookbackDays         int
	MinInsiders          int     // cluster threshold, default 2
	CSuiteStakeThreshold float64 // solo C-suite Δown%, default 3.0
	TopN                 int
}

// NewScorer returns a Scorer with the given parameters.
func NewScorer(decayRate float64, lookbackDays, minInsiders int, csuiteThreshold float64, topN int) *Scorer {
	return &Scorer{
		DecayRate:            decayRate,
		LookbackDays:         lookbackDays,
		MinInsiders:          minInsiders,
		CSuiteStakeThreshold: csuiteThreshold,
		TopN:                 topN,
	}
}

// EventScore computes the conviction contribution of a single buy event:
// Δown% × title_multiplier × e^(−decay_rate × days_since_trade).
// Δown is in percent units (a newly opened position is 100).
func (s *Scorer) EventScore(evt model.BuyEvent, today time.Time) float64 {
	days := daysBetween(evt.TradeDate, today)
	if days < 0 {
		days = 0
	}
	mult := defaultMultiplier
	if IsCSuite(evt.Title) {
		mult = csuiteMultiplier
	}
	return evt.DeltaOwnPct * mult * math.Exp(-s.DecayRate*float64(days))
}

// Score aggregates events per ticker, applies the inclusion rule, and
// returns qualifying tickers sorted by score descending, truncated to TopN.
//
// Inclusion: at least MinInsiders distinct insiders bought, OR exactly one
// insider bought who is C-suite with Δown% at or above the threshold.
// Non-qualifying tickers are discarded entirely.
//
// Ties on score break by most recent trade date, then ticker ascending.
func (s *Scorer) Score(events []model.BuyEvent, today time.Time) []TickerScore {
	byTicker := map[string]*TickerScore{}

	for _, evt := range events {
		ticker := strings.ToUpper(strings.TrimSpace(evt.Ticker))
		if ticker == "" || evt.InsiderName == "" {
			continue
		}
		if daysBetween(evt.TradeDate, today) > s.LookbackDays {
			continue
		}

		ts, ok := byTicker[ticker]
		if !ok {
			ts = &TickerScore{Ticker: ticker}
			byTicker[ticker] = ts
		}
		ts.Score += s.EventScore(evt, today)
		ts.Events = append(ts.Events, evt)
		if !containsInsider(ts.Insiders, evt.InsiderName) {
			ts.Insiders = append(ts.Insiders, evt.InsiderName)
		}
		if IsCSuite(evt.Title) {
			ts.CSuitePresent = true
		}
		if evt.DeltaOwnPct > ts.MaxDeltaOwn {
			ts.MaxDeltaOwn = evt.DeltaOwnPct
		}
		if evt.TradeDate.After(ts.LastTradeDate) {
			ts.LastTradeDate = evt.TradeDate
		}
	}

	qualified := make([]TickerScore, 0, len(byTicker))
	for _, ts := range byTicker {
		if s.qualifies(ts) {
			qualified = append(qualified, *ts)
		}
	}

	sort.Slice(qualified, func(i, j int) bool {
		a, b := qualified[i], qualified[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastTradeDate.Equal(b.LastTradeDate) {
			return a.LastTradeDate.After(b.LastTradeDate)
		}
		return a.Ticker < b.Ticker
	})

	if s.TopN > 0 && len(qualified) > s.TopN {
		qualified = qualified[:s.TopN]
	}
	return qualified
}

func (s *Scorer) qualifies(ts *TickerScore) bool {
	if len(ts.Insiders) >= s.MinInsiders {
		return true
	}
	if len(ts.Insiders) == 1 && ts.CSuitePresent && ts.MaxDeltaOwn >= s.CSuiteStakeThreshold {
		return true
	}
	return false
}

func containsInsider(insiders []string, name string) bool {
	for _, n := range insiders {
		if n == name {
			return true
		}
	}
	return false
}

func daysBetween(from, to time.Time) int {
	f := from.Truncate(24 * time.Hour)
	t := to.Truncate(24 * time.Hour)
	return int(t.Sub(f).Hours() / 24)
}

package conviction

import (
	"math"
	"testing"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

var today = time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)

func newTestScorer() *Scorer {
	return NewScorer(0.2, 7, 2, 3.0, 25)
}

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func TestIsCSuite(t *testing.T) {
	cases := []struct {
		title string
		want  bool
	}{
		{"CEO", true},
		{"CEO, Chairman", true},
		{"Pres, CEO", true},
		{"Chief Executive Officer", false}, // abbreviations only, as reported by the feed
		{"CFO", true},
		{"COO", true},
		{"Chmn", true},
		{"Director", false},
		{"10% Owner", false},
		{"EVP", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsCSuite(c.title); got != c.want {
			t.Errorf("IsCSuite(%q) = %v, want %v", c.title, got, c.want)
		}
	}
}

func TestEventScore_CSuiteMultiplierAndDecay(t *testing.T) {
	s := newTestScorer()

	ceo := model.BuyEvent{Ticker: "X", InsiderName: "a", Title: "CEO", DeltaOwnPct: 100, TradeDate: daysAgo(2)}
	cfo := model.BuyEvent{Ticker: "X", InsiderName: "b", Title: "CFO", DeltaOwnPct: 5, TradeDate: daysAgo(1)}

	ceoScore := s.EventScore(ceo, today)
	cfoScore := s.EventScore(cfo, today)

	wantCEO := 100 * 3 * math.Exp(-0.4)
	wantCFO := 5 * 3 * math.Exp(-0.2)
	if math.Abs(ceoScore-wantCEO) > 1e-9 {
		t.Errorf("CEO event score = %.4f, want %.4f", ceoScore, wantCEO)
	}
	if math.Abs(cfoScore-wantCFO) > 1e-9 {
		t.Errorf("CFO event score = %.4f, want %.4f", cfoScore, wantCFO)
	}

	// The ratio pins the units: a fresh 100% stake at triple weight must
	// dominate a small next-day buy by ~16x.
	ratio := ceoScore / cfoScore
	if math.Abs(ratio-16.37) > 0.05 {
		t.Errorf("score ratio = %.2f, want ≈16.37", ratio)
	}
}

func TestEventScore_StrictlyDecreasingWithAge(t *testing.T) {
	s := newTestScorer()
	prev := math.Inf(1)
	for _, age := range []int{0, 1, 2, 5, 7} {
		evt := model.BuyEvent{Ticker: "X", InsiderName: "a", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(age)}
		score := s.EventScore(evt, today)
		if score >= prev {
			t.Errorf("score at age %d (%.4f) not below younger event (%.4f)", age, score, prev)
		}
		prev = score
	}
}

func TestEventScore_NonNegative(t *testing.T) {
	s := newTestScorer()
	evt := model.BuyEvent{Ticker: "X", InsiderName: "a", Title: "Director", DeltaOwnPct: 0.01, TradeDate: daysAgo(7)}
	if got := s.EventScore(evt, today); got < 0 {
		t.Errorf("event score = %.6f, want >= 0", got)
	}
}

func TestEventScore_FutureDateClampedToZeroDays(t *testing.T) {
	s := newTestScorer()
	evt := model.BuyEvent{Ticker: "X", InsiderName: "a", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(-1)}
	if got := s.EventScore(evt, today); math.Abs(got-10) > 1e-9 {
		t.Errorf("future-dated event score = %.4f, want 10 (no decay)", got)
	}
}

func TestScore_ClusterQualifiesAndAggregates(t *testing.T) {
	s := newTestScorer()
	events := []model.BuyEvent{
		{Ticker: "X", InsiderName: "alice", Title: "CEO", DeltaOwnPct: 100, TradeDate: daysAgo(2)},
		{Ticker: "X", InsiderName: "bob", Title: "CFO", DeltaOwnPct: 5, TradeDate: daysAgo(1)},
	}

	scored := s.Score(events, today)
	if len(scored) != 1 {
		t.Fatalf("expected 1 qualifying ticker, got %d", len(scored))
	}

	ts := scored[0]
	want := s.EventScore(events[0], today) + s.EventScore(events[1], today)
	if math.Abs(ts.Score-want) > 1e-9 {
		t.Errorf("aggregate = %.4f, want sum of event scores %.4f", ts.Score, want)
	}
	if len(ts.Insiders) != 2 {
		t.Errorf("expected 2 distinct insiders, got %d", len(ts.Insiders))
	}
	if !ts.CSuitePresent {
		t.Error("expected C-suite flag set")
	}
	if ts.MaxDeltaOwn != 100 {
		t.Errorf("max Δown = %.1f, want 100", ts.MaxDeltaOwn)
	}
}

func TestScore_SoloNonCSuiteNeverQualifies(t *testing.T) {
	s := newTestScorer()
	events := []model.BuyEvent{
		{Ticker: "X", InsiderName: "alice", Title: "Director", DeltaOwnPct: 50, TradeDate: daysAgo(1)},
		{Ticker: "X", InsiderName: "alice", Title: "Director", DeltaOwnPct: 50, TradeDate: daysAgo(2)},
	}
	if scored := s.Score(events, today); len(scored) != 0 {
		t.Fatalf("solo non-C-suite buyer qualified: %+v", scored)
	}
}

func TestScore_SoloCSuiteStakeThreshold(t *testing.T) {
	s := newTestScorer()

	below := []model.BuyEvent{
		{Ticker: "X", InsiderName: "alice", Title: "CEO", DeltaOwnPct: 2.9, TradeDate: daysAgo(1)},
	}
	if scored := s.Score(below, today); len(scored) != 0 {
		t.Errorf("solo CEO below threshold qualified: %+v", scored)
	}

	at := []model.BuyEvent{
		{Ticker: "X", InsiderName: "alice", Title: "CEO", DeltaOwnPct: 3.0, TradeDate: daysAgo(1)},
	}
	if scored := s.Score(at, today); len(scored) != 1 {
		t.Errorf("solo CEO at threshold did not qualify")
	}
}

func TestScore_LookbackWindowExcludesOldEvents(t *testing.T) {
	s := newTestScorer()
	events := []model.BuyEvent{
		{Ticker: "X", InsiderName: "alice", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(8)},
		{Ticker: "X", InsiderName: "bob", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(9)},
	}
	if scored := s.Score(events, today); len(scored) != 0 {
		t.Fatalf("events outside lookback window were scored: %+v", scored)
	}
}

func TestScore_SortAndTieBreak(t *testing.T) {
	s := newTestScorer()
	events := []model.BuyEvent{
		// AAA and BBB tie exactly: same Δown, same day, two insiders each.
		{Ticker: "BBB", InsiderName: "a", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
		{Ticker: "BBB", InsiderName: "b", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
		{Ticker: "AAA", InsiderName: "c", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
		{Ticker: "AAA", InsiderName: "d", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
		// CCC scores higher than both.
		{Ticker: "CCC", InsiderName: "e", Title: "CEO", DeltaOwnPct: 50, TradeDate: daysAgo(1)},
		{Ticker: "CCC", InsiderName: "f", Title: "Director", DeltaOwnPct: 50, TradeDate: daysAgo(1)},
	}

	scored := s.Score(events, today)
	if len(scored) != 3 {
		t.Fatalf("expected 3 tickers, got %d", len(scored))
	}
	if scored[0].Ticker != "CCC" {
		t.Errorf("highest score first: got %s", scored[0].Ticker)
	}
	if scored[1].Ticker != "AAA" || scored[2].Ticker != "BBB" {
		t.Errorf("tie should break by ticker ascending, got %s then %s", scored[1].Ticker, scored[2].Ticker)
	}
}

func TestScore_TieBreakPrefersRecentTrade(t *testing.T) {
	s := NewScorer(0, 7, 2, 3.0, 25) // no decay so scores tie across dates
	events := []model.BuyEvent{
		{Ticker: "OLD", InsiderName: "a", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(5)},
		{Ticker: "OLD", InsiderName: "b", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(5)},
		{Ticker: "NEW", InsiderName: "c", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
		{Ticker: "NEW", InsiderName: "d", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
	}
	scored := s.Score(events, today)
	if len(scored) != 2 || scored[0].Ticker != "NEW" {
		t.Fatalf("expected NEW first on equal scores, got %+v", scored)
	}
}

func TestScore_TopNTruncation(t *testing.T) {
	s := NewScorer(0.2, 7, 2, 3.0, 2)
	events := []model.BuyEvent{
		{Ticker: "A", InsiderName: "a1", Title: "Director", DeltaOwnPct: 30, TradeDate: daysAgo(1)},
		{Ticker: "A", InsiderName: "a2", Title: "Director", DeltaOwnPct: 30, TradeDate: daysAgo(1)},
		{Ticker: "B", InsiderName: "b1", Title: "Director", DeltaOwnPct: 20, TradeDate: daysAgo(1)},
		{Ticker: "B", InsiderName: "b2", Title: "Director", DeltaOwnPct: 20, TradeDate: daysAgo(1)},
		{Ticker: "C", InsiderName: "c1", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
		{Ticker: "C", InsiderName: "c2", Title: "Director", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
	}
	scored := s.Score(events, today)
	if len(scored) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(scored))
	}
	if scored[0].Ticker != "A" || scored[1].Ticker != "B" {
		t.Errorf("expected [A B], got [%s %s]", scored[0].Ticker, scored[1].Ticker)
	}
}

func TestScore_SkipsBlankTickerAndInsider(t *testing.T) {
	s := newTestScorer()
	events := []model.BuyEvent{
		{Ticker: "", InsiderName: "a", Title: "CEO", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
		{Ticker: "X", InsiderName: "", Title: "CEO", DeltaOwnPct: 10, TradeDate: daysAgo(1)},
	}
	if scored := s.Score(events, today); len(scored) != 0 {
		t.Fatalf("malformed events were scored: %+v", scored)
	}
}

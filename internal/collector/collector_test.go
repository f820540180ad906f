package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/conviction"
	"github.com/thecr7guy2/agent-trading/internal/model"
)

func TestValidTicker(t *testing.T) {
	cases := []struct {
		ticker string
		want   bool
	}{
		{"NVDA", true},
		{"AAPL", true},
		{"nvda", true},
		{" MSFT ", true},
		{"A", false},
		{"GM", false}, // two letters, indistinguishable from chat noise
		{"SPY", false},
		{"CEO", false},
		{"YOLO", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidTicker(c.ticker); got != c.want {
			t.Errorf("ValidTicker(%q) = %v, want %v", c.ticker, got, c.want)
		}
	}
}

func TestInsiderFeed_ScoresAndRanks(t *testing.T) {
	today := time.Now()
	source := &StaticEventSource{Events: []model.BuyEvent{
		{Ticker: "AAA", InsiderName: "a", Title: "CEO", DeltaOwnPct: 50, TradeDate: today},
		{Ticker: "AAA", InsiderName: "b", Title: "Director", DeltaOwnPct: 5, TradeDate: today},
		{Ticker: "BBB", InsiderName: "c", Title: "Director", DeltaOwnPct: 5, TradeDate: today},
		{Ticker: "BBB", InsiderName: "d", Title: "Director", DeltaOwnPct: 5, TradeDate: today},
		// Solo director, never qualifies.
		{Ticker: "CCC", InsiderName: "e", Title: "Director", DeltaOwnPct: 50, TradeDate: today},
	}}
	scorer := conviction.NewScorer(0.2, 7, 2, 3.0, 25)
	feed := NewInsiderFeed(source, scorer)

	hits, err := feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].Ticker != "AAA" || hits[0].Rank != 0 {
		t.Errorf("first hit = %+v", hits[0])
	}
	if hits[1].Ticker != "BBB" || hits[1].Rank != 1 {
		t.Errorf("second hit = %+v", hits[1])
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("scores not descending: %.1f vs %.1f", hits[0].Score, hits[1].Score)
	}
}

func TestScreenerFeed_ParsesAndFiltersNoise(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[
			{"ticker":"NVDA","score":9.1,"reason":"momentum"},
			{"ticker":"SPY","score":8.0,"reason":"etf noise"},
			{"ticker":"AMD","score":7.5,"reason":"earnings beat"}
		]}`))
	}))
	defer srv.Close()

	feed := NewScreenerFeed(srv.URL, "")
	hits, err := feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2 (SPY filtered)", len(hits))
	}
	if hits[0].Ticker != "NVDA" || hits[1].Ticker != "AMD" {
		t.Errorf("hits = %+v", hits)
	}
	if hits[1].Rank != 1 {
		t.Errorf("ranks must be dense after filtering, got %d", hits[1].Rank)
	}
}

func TestScreenerFeed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	feed := NewScreenerFeed(srv.URL, "")
	if _, err := feed.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestSocialFeed_ParsesDigest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"date":"2026-03-06","total_posts":412,"tickers":[
			{"ticker":"NVDA","mentions":37,"sentiment_score":0.42,
			 "top_posts":[{"title":"NVDA earnings play","url":"https://example.com/p1","subreddit":"wallstreetbets"}]},
			{"ticker":"YOLO","mentions":20,"sentiment_score":0.9},
			{"ticker":"PLTR","mentions":0,"sentiment_score":0.1},
			{"ticker":"AMD","mentions":4,"sentiment_score":-0.15}
		]}`))
	}))
	defer srv.Close()

	feed := NewSocialFeed(srv.URL, "")
	hits, err := feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2 (noise ticker and zero-mention entry dropped)", len(hits))
	}
	if hits[0].Ticker != "NVDA" || hits[0].Rank != 0 || hits[0].Score != 37 {
		t.Errorf("first hit = %+v", hits[0])
	}
	if hits[1].Ticker != "AMD" || hits[1].Rank != 1 {
		t.Errorf("ranks must be dense after filtering, got %+v", hits[1])
	}
	if want := `37 mentions, sentiment +0.42; "NVDA earnings play" (r/wallstreetbets)`; hits[0].Evidence != want {
		t.Errorf("evidence = %q", hits[0].Evidence)
	}
	if hits[1].Evidence != "4 mentions, sentiment -0.15" {
		t.Errorf("evidence = %q", hits[1].Evidence)
	}
}

func TestSocialFeed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "digest unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	feed := NewSocialFeed(srv.URL, "")
	if _, err := feed.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestHTTPEventSource_ParsesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/insider/buys" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("days") != "7" {
			t.Errorf("days = %s, want 7", r.URL.Query().Get("days"))
		}
		w.Write([]byte(`{"events":[
			{"ticker":"NVDA","company":"NVIDIA","insider_name":"J. Doe","title":"CEO","delta_own_pct":4.2,"trade_date":"2026-03-04","value_usd":1000000},
			{"ticker":"BAD","insider_name":"X","title":"CFO","delta_own_pct":1,"trade_date":"not-a-date"}
		]}`))
	}))
	defer srv.Close()

	source := NewHTTPEventSource(srv.URL, "")
	events, err := source.RecentBuys(context.Background(), 7)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 (bad date dropped)", len(events))
	}
	evt := events[0]
	if evt.Ticker != "NVDA" || evt.DeltaOwnPct != 4.2 || evt.TradeDate.Format("2006-01-02") != "2026-03-04" {
		t.Errorf("event = %+v", evt)
	}
}

func TestNewsEnricher_ParsesHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "NVDA" {
			t.Errorf("q = %s", r.URL.Query().Get("q"))
		}
		w.Write([]byte(`{"articles":[
			{"title":"NVDA pops","url":"https://example.com/1","source":{"name":"Wire"},"publishedAt":"2026-03-05T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	enricher := NewNewsEnricher(srv.URL, "key", "")
	headlines, err := enricher.Headlines(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(headlines) != 1 || headlines[0].Title != "NVDA pops" || headlines[0].Source != "Wire" {
		t.Errorf("headlines = %+v", headlines)
	}
}

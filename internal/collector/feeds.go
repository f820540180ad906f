package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "agent-trading/1.0")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ScreenerFeed pulls ranked screener hits from a REST screener service.
type ScreenerFeed struct {
	BaseURL string
	Client  *http.Client
}

// NewScreenerFeed creates a screener feed with optional proxy support.
func NewScreenerFeed(baseURL, proxyURL string) *ScreenerFeed {
	return &ScreenerFeed{BaseURL: baseURL, Client: newHTTPClient(proxyURL)}
}

func (f *ScreenerFeed) Name() string { return "screener" }

type screenerResponse struct {
	Results []struct {
		Ticker string  `json:"ticker"`
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	} `json:"results"`
}

// Fetch returns screener hits in the service's own order.
func (f *ScreenerFeed) Fetch(ctx context.Context) ([]model.SourceHit, error) {
	var payload screenerResponse
	if err := getJSON(ctx, f.Client, f.BaseURL, &payload); err != nil {
		return nil, fmt.Errorf("screener fetch: %w", err)
	}

	var hits []model.SourceHit
	for _, r := range payload.Results {
		if !ValidTicker(r.Ticker) {
			continue
		}
		hits = append(hits, model.SourceHit{
			Ticker:   r.Ticker,
			Rank:     len(hits),
			Score:    r.Score,
			Evidence: r.Reason,
		})
	}
	return hits, nil
}

// EarningsFeed surfaces tickers with earnings announcements this week.
type EarningsFeed struct {
	BaseURL string
	Client  *http.Client
}

// NewEarningsFeed creates an earnings-calendar feed.
func NewEarningsFeed(baseURL, proxyURL string) *EarningsFeed {
	return &EarningsFeed{BaseURL: baseURL, Client: newHTTPClient(proxyURL)}
}

func (f *EarningsFeed) Name() string { return "earnings" }

type earningsResponse struct {
	Events []struct {
		Ticker string `json:"ticker"`
		Date   string `json:"date"`
	} `json:"events"`
}

func (f *EarningsFeed) Fetch(ctx context.Context) ([]model.SourceHit, error) {
	var payload earningsResponse
	if err := getJSON(ctx, f.Client, f.BaseURL, &payload); err != nil {
		return nil, fmt.Errorf("earnings fetch: %w", err)
	}

	var hits []model.SourceHit
	for _, e := range payload.Events {
		if !ValidTicker(e.Ticker) {
			continue
		}
		hits = append(hits, model.SourceHit{
			Ticker:   e.Ticker,
			Rank:     len(hits),
			Evidence: "earnings " + e.Date,
		})
	}
	return hits, nil
}

// StaticFeed serves a fixed hit list. Used in dry runs and tests.
type StaticFeed struct {
	FeedName string
	Hits     []model.SourceHit
	Err      error
}

func (f *StaticFeed) Name() string { return f.FeedName }

func (f *StaticFeed) Fetch(_ context.Context) ([]model.SourceHit, error) {
	return f.Hits, f.Err
}

package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// HTTPEventSource pulls buy events from the filings-collector service,
// which owns the scraping and parsing this bot stays out of.
type HTTPEventSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPEventSource creates an event source with optional proxy support.
func NewHTTPEventSource(baseURL, proxyURL string) *HTTPEventSource {
	return &HTTPEventSource{BaseURL: baseURL, Client: newHTTPClient(proxyURL)}
}

func (s *HTTPEventSource) Name() string { return "filings-collector" }

type buyEventsResponse struct {
	Events []struct {
		Ticker      string  `json:"ticker"`
		Company     string  `json:"company"`
		InsiderName string  `json:"insider_name"`
		Title       string  `json:"title"`
		DeltaOwnPct float64 `json:"delta_own_pct"`
		TradeDate   string  `json:"trade_date"`
		ValueUSD    float64 `json:"value_usd"`
	} `json:"events"`
}

func (s *HTTPEventSource) RecentBuys(ctx context.Context, lookbackDays int) ([]model.BuyEvent, error) {
	endpoint := fmt.Sprintf("%s/insider/buys?days=%d", s.BaseURL, lookbackDays)

	var payload buyEventsResponse
	if err := getJSON(ctx, s.Client, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("insider events fetch: %w", err)
	}

	events := make([]model.BuyEvent, 0, len(payload.Events))
	for _, e := range payload.Events {
		tradeDate, err := time.Parse("2006-01-02", e.TradeDate)
		if err != nil {
			continue
		}
		events = append(events, model.BuyEvent{
			Ticker:      e.Ticker,
			Company:     e.Company,
			InsiderName: e.InsiderName,
			Title:       e.Title,
			DeltaOwnPct: e.DeltaOwnPct,
			TradeDate:   tradeDate,
			ValueUSD:    e.ValueUSD,
		})
	}
	return events, nil
}

// StaticEventSource serves fixed events for dry runs and tests.
type StaticEventSource struct {
	Events []model.BuyEvent
	Err    error
}

func (s *StaticEventSource) Name() string { return "static" }

func (s *StaticEventSource) RecentBuys(_ context.Context, _ int) ([]model.BuyEvent, error) {
	return s.Events, s.Err
}

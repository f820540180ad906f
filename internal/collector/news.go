package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

const defaultNewsURL = "https://newsapi.org/v2/everything"

// NewsEnricher fetches recent headlines per ticker from a NewsAPI-style
// endpoint. Used by the merger for best-effort candidate enrichment.
type NewsEnricher struct {
	BaseURL  string
	APIKey   string
	MaxItems int
	Client   *http.Client
}

// NewNewsEnricher creates an enricher; baseURL may be empty for the
// NewsAPI default.
func NewNewsEnricher(baseURL, apiKey, proxyURL string) *NewsEnricher {
	if baseURL == "" {
		baseURL = defaultNewsURL
	}
	return &NewsEnricher{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		MaxItems: 5,
		Client:   newHTTPClient(proxyURL),
	}
}

type newsResponse struct {
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (n *NewsEnricher) Headlines(ctx context.Context, ticker string) ([]model.Headline, error) {
	endpoint := fmt.Sprintf("%s?q=%s&sortBy=publishedAt&pageSize=%d&apiKey=%s",
		n.BaseURL, url.QueryEscape(ticker), n.MaxItems, n.APIKey)

	var payload newsResponse
	if err := getJSON(ctx, n.Client, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("news fetch for %s: %w", ticker, err)
	}

	headlines := make([]model.Headline, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		headlines = append(headlines, model.Headline{
			Title:       a.Title,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
		})
	}
	return headlines, nil
}

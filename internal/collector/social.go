package collector

import (
	"context"
	"fmt"
	"net/http"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// SocialFeed pulls the daily mention digest from the social-scraper
// service: tickers extracted from forum posts, ordered by mention count,
// with average sentiment and a few sample posts as evidence.
type SocialFeed struct {
	BaseURL string
	Client  *http.Client
}

// NewSocialFeed creates a social-mentions feed with optional proxy support.
func NewSocialFeed(baseURL, proxyURL string) *SocialFeed {
	return &SocialFeed{BaseURL: baseURL, Client: newHTTPClient(proxyURL)}
}

func (f *SocialFeed) Name() string { return "social" }

type socialDigest struct {
	Date       string `json:"date"`
	TotalPosts int    `json:"total_posts"`
	Tickers    []struct {
		Ticker         string  `json:"ticker"`
		Mentions       int     `json:"mentions"`
		SentimentScore float64 `json:"sentiment_score"`
		TopPosts       []struct {
			Title     string `json:"title"`
			URL       string `json:"url"`
			Subreddit string `json:"subreddit"`
		} `json:"top_posts"`
	} `json:"tickers"`
}

// Fetch returns the digest entries in mention order. Single-mention
// tickers are kept; the merger's cross-source pass is the noise filter.
func (f *SocialFeed) Fetch(ctx context.Context) ([]model.SourceHit, error) {
	var digest socialDigest
	if err := getJSON(ctx, f.Client, f.BaseURL, &digest); err != nil {
		return nil, fmt.Errorf("social fetch: %w", err)
	}

	var hits []model.SourceHit
	for _, t := range digest.Tickers {
		if !ValidTicker(t.Ticker) || t.Mentions <= 0 {
			continue
		}
		evidence := fmt.Sprintf("%d mentions, sentiment %+.2f", t.Mentions, t.SentimentScore)
		if len(t.TopPosts) > 0 {
			evidence += fmt.Sprintf("; %q (r/%s)", t.TopPosts[0].Title, t.TopPosts[0].Subreddit)
		}
		hits = append(hits, model.SourceHit{
			Ticker:   t.Ticker,
			Rank:     len(hits),
			Score:    float64(t.Mentions),
			Evidence: evidence,
		})
	}
	return hits, nil
}

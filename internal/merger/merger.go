// Package merger unions candidate lists from independent signal sources
// into one ranked, capped candidate set.
package merger

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/cooldown"
	"github.com/thecr7guy2/agent-trading/internal/model"
)

// Feed is one named signal source. Fetch returns the source's own ranked
// hits; a failing feed is excluded from the merge, never fatal.
type Feed interface {
	Name() string
	Fetch(ctx context.Context) ([]model.SourceHit, error)
}

// Enricher attaches supplementary headlines to a candidate. Best effort:
// errors and timeouts degrade to an empty payload.
type Enricher interface {
	Headlines(ctx context.Context, ticker string) ([]model.Headline, error)
}

// Merger merges feeds in a declared priority order.
type Merger struct {
	feeds         []Feed // declared priority order
	cooldown      *cooldown.Tracker
	enricher      Enricher
	limit         int
	enrichWorkers int
	enrichTimeout time.Duration
}

// Options configures a Merger.
type Options struct {
	Feeds          []Feed
	Cooldown       *cooldown.Tracker
	Enricher       Enricher
	CandidateLimit int
	EnrichWorkers  int
	EnrichTimeout  time.Duration
}

// New creates a Merger.
func New(opts Options) *Merger {
	workers := opts.EnrichWorkers
	if workers <= 0 {
		workers = 5
	}
	timeout := opts.EnrichTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Merger{
		feeds:         opts.Feeds,
		cooldown:      opts.Cooldown,
		enricher:      opts.Enricher,
		limit:         opts.CandidateLimit,
		enrichWorkers: workers,
		enrichTimeout: timeout,
	}
}

type entry struct {
	ticker  string
	sources []model.SourceRef
}

func (e *entry) bestRank() int {
	best := e.sources[0].Rank
	for _, s := range e.sources[1:] {
		if s.Rank < best {
			best = s.Rank
		}
	}
	return best
}

func (e *entry) totalScore() float64 {
	var sum float64
	for _, s := range e.sources {
		sum += s.Score
	}
	return sum
}

// Merge fetches all feeds, admits tickers in two passes, drops cooled-down
// tickers, and enriches the survivors.
//
// Pass 1: every ticker surfaced by 2+ distinct sources, ordered by source
// count desc, then best per-source rank, then ticker. Pass 2: remaining
// capacity filled feed by feed in declared priority order, each feed's own
// rank order. Cooldown removal happens after selection and may leave the
// result below the target count — that is fine.
func (m *Merger) Merge(ctx context.Context, today time.Time) []model.Candidate {
	entries := map[string]*entry{}

	for _, feed := range m.feeds {
		hits, err := feed.Fetch(ctx)
		if err != nil {
			log.Printf("[WARN] source %s unavailable, merging without it: %v", feed.Name(), err)
			continue
		}
		for _, hit := range hits {
			if hit.Ticker == "" {
				continue
			}
			e, ok := entries[hit.Ticker]
			if !ok {
				e = &entry{ticker: hit.Ticker}
				entries[hit.Ticker] = e
			}
			e.sources = append(e.sources, model.SourceRef{
				Name:     feed.Name(),
				Rank:     hit.Rank,
				Score:    hit.Score,
				Evidence: hit.Evidence,
			})
		}
	}

	admitted := m.admit(entries)

	// Cooldown removal happens last so a blocked multi-source ticker
	// cannot sneak back in through a lower pass.
	blocked := m.cooldown.Blocked(today)
	final := admitted[:0]
	for _, e := range admitted {
		if blocked[e.ticker] {
			log.Printf("[INFO] %s recently traded, excluded from candidates", e.ticker)
			continue
		}
		final = append(final, e)
	}

	candidates := make([]model.Candidate, len(final))
	for i, e := range final {
		candidates[i] = model.Candidate{
			Ticker:  e.ticker,
			Score:   e.totalScore(),
			Sources: e.sources,
		}
	}

	m.enrich(ctx, candidates)
	return candidates
}

// admit runs the two selection passes over the merged ticker map.
func (m *Merger) admit(entries map[string]*entry) []*entry {
	var multi []*entry
	for _, e := range entries {
		if len(e.sources) >= 2 {
			multi = append(multi, e)
		}
	}
	sort.Slice(multi, func(i, j int) bool {
		a, b := multi[i], multi[j]
		if len(a.sources) != len(b.sources) {
			return len(a.sources) > len(b.sources)
		}
		if a.bestRank() != b.bestRank() {
			return a.bestRank() < b.bestRank()
		}
		return a.ticker < b.ticker
	})

	admitted := make([]*entry, 0, m.limit)
	taken := map[string]bool{}
	for _, e := range multi {
		if len(admitted) >= m.limit {
			break
		}
		admitted = append(admitted, e)
		taken[e.ticker] = true
	}

	// Pass 2: fill remaining capacity by declared feed priority, each
	// feed's own ranking.
	for _, feed := range m.feeds {
		if len(admitted) >= m.limit {
			break
		}
		var rest []*entry
		for _, e := range entries {
			if taken[e.ticker] {
				continue
			}
			for _, s := range e.sources {
				if s.Name == feed.Name() {
					rest = append(rest, e)
					break
				}
			}
		}
		sort.Slice(rest, func(i, j int) bool {
			a, b := rest[i], rest[j]
			ra, rb := rankFor(a, feed.Name()), rankFor(b, feed.Name())
			if ra != rb {
				return ra < rb
			}
			return a.ticker < b.ticker
		})
		for _, e := range rest {
			if len(admitted) >= m.limit {
				break
			}
			admitted = append(admitted, e)
			taken[e.ticker] = true
		}
	}
	return admitted
}

func rankFor(e *entry, source string) int {
	for _, s := range e.sources {
		if s.Name == source {
			return s.Rank
		}
	}
	return int(^uint(0) >> 1)
}

// enrich fetches headlines for each candidate with bounded parallelism.
// Each worker writes only its own candidate's Headlines slot, so the
// output needs no locking.
func (m *Merger) enrich(ctx context.Context, candidates []model.Candidate) {
	if m.enricher == nil || len(candidates) == 0 {
		return
	}

	sem := make(chan struct{}, m.enrichWorkers)
	done := make(chan struct{})
	for i := range candidates {
		sem <- struct{}{}
		go func(c *model.Candidate) {
			defer func() {
				<-sem
				done <- struct{}{}
			}()
			fetchCtx, cancel := context.WithTimeout(ctx, m.enrichTimeout)
			defer cancel()
			headlines, err := m.enricher.Headlines(fetchCtx, c.Ticker)
			if err != nil {
				log.Printf("[WARN] enrichment failed for %s, continuing without: %v", c.Ticker, err)
				return
			}
			c.Headlines = headlines
		}(&candidates[i])
	}
	for range candidates {
		<-done
	}
}

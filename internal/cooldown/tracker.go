// Package cooldown keeps recently bought tickers out of candidate
// selection for a configurable number of days.
package cooldown

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

// Tracker is the durable ticker → last-bought-date blacklist. Entries are
// never deleted automatically; staleness is computed at read time.
type Tracker struct {
	mu    sync.Mutex
	store Store
	days  int
}

// NewTracker loads nothing eagerly; any unreadable state is handled at
// read time by the Store.
func NewTracker(store Store, days int) *Tracker {
	return &Tracker{store: store, days: days}
}

// IsBlocked reports whether the ticker was bought fewer than the cooldown
// window's days before today.
func (t *Tracker) IsBlocked(ticker string, today time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := t.load()
	return t.blocked(entries, normalize(ticker), today)
}

// Blocked returns the set of currently blocked tickers.
func (t *Tracker) Blocked(today time.Time) map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := t.load()
	out := map[string]bool{}
	for ticker := range entries {
		if t.blocked(entries, ticker, today) {
			out[ticker] = true
		}
	}
	return out
}

// Record marks a ticker as bought on the given date, overwriting any
// previous entry.
func (t *Tracker) Record(ticker string, today time.Time) error {
	return t.RecordMany([]string{ticker}, today)
}

// RecordMany records several tickers under one load/save round trip.
func (t *Tracker) RecordMany(tickers []string, today time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := t.load()
	for _, ticker := range tickers {
		entries[normalize(ticker)] = today.Format(dateLayout)
	}
	if err := t.store.Save(entries); err != nil {
		return fmt.Errorf("save cooldown state: %w", err)
	}
	return nil
}

// Cleanup compacts entries older than the cooldown window. Purely
// housekeeping — expired entries are already inert.
func (t *Tracker) Cleanup(today time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := t.load()
	fresh := map[string]string{}
	for ticker, d := range entries {
		if t.blocked(entries, ticker, today) {
			fresh[ticker] = d
		}
	}
	removed := len(entries) - len(fresh)
	if removed == 0 {
		return nil
	}
	if err := t.store.Save(fresh); err != nil {
		return fmt.Errorf("save cooldown state: %w", err)
	}
	log.Printf("[INFO] cooldown cleanup: removed %d expired tickers", removed)
	return nil
}

func (t *Tracker) load() map[string]string {
	entries, err := t.store.Load()
	if err != nil {
		log.Printf("[WARN] cooldown state unreadable (%v), treating as empty", err)
		return map[string]string{}
	}
	return entries
}

func (t *Tracker) blocked(entries map[string]string, ticker string, today time.Time) bool {
	raw, ok := entries[ticker]
	if !ok {
		return false
	}
	bought, err := time.Parse(dateLayout, raw)
	if err != nil {
		// Malformed entry: ignore rather than block forever.
		return false
	}
	days := int(today.Truncate(24*time.Hour).Sub(bought.Truncate(24*time.Hour)).Hours() / 24)
	return days < t.days
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Package broker defines the minimal surface the bot needs from an
// execution venue, plus an in-memory paper implementation for dry runs.
package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// Fill is a normalized view of a placed market order.
type Fill struct {
	OrderID   string
	Ticker    string
	Quantity  float64
	Value     float64 // actual filled amount in account currency
	Price     float64
	CreatedAt time.Time
}

// Broker is the venue boundary: price lookup, tradability resolution,
// order submission, and position snapshots.
type Broker interface {
	Name() string
	// ResolveTicker maps a candidate ticker to the venue's instrument
	// code. An empty result with a nil error means "not tradable here".
	ResolveTicker(ctx context.Context, ticker string) (string, error)
	CurrentPrice(ctx context.Context, ticker string) (float64, error)
	// PlaceMarketOrder buys the given quantity at market.
	PlaceMarketOrder(ctx context.Context, accountID, brokerTicker string, quantity float64) (*Fill, error)
	Positions(ctx context.Context, accountID string) ([]model.Position, error)
	AvailableCash(ctx context.Context, accountID string) (float64, error)
}

// OrderError is a venue-reported order rejection.
type OrderError struct {
	StatusCode int
	Message    string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order rejected (%d): %s", e.StatusCode, e.Message)
}

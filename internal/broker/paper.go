package broker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// PaperBroker simulates execution against a fixed price table. Orders
// never touch a real venue; positions accumulate in memory per account.
type PaperBroker struct {
	mu        sync.Mutex
	prices    map[string]float64
	cash      map[string]float64
	positions map[string][]model.Position // accountID → open positions
	rejects   map[string]string           // ticker → rejection message
	now       func() time.Time
}

// NewPaperBroker creates a paper broker with the given price table.
func NewPaperBroker(prices map[string]float64) *PaperBroker {
	normalized := make(map[string]float64, len(prices))
	for t, p := range prices {
		normalized[strings.ToUpper(t)] = p
	}
	return &PaperBroker{
		prices:    normalized,
		cash:      map[string]float64{},
		positions: map[string][]model.Position{},
		rejects:   map[string]string{},
		now:       time.Now,
	}
}

func (p *PaperBroker) Name() string { return "paper" }

// SetPrice updates (or adds) a quoted ticker.
func (p *PaperBroker) SetPrice(ticker string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[strings.ToUpper(ticker)] = price
}

// SetCash seeds an account's available cash.
func (p *PaperBroker) SetCash(accountID string, cash float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cash[accountID] = cash
}

// Reject makes future orders for a ticker fail with the given message.
func (p *PaperBroker) Reject(ticker, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejects[strings.ToUpper(ticker)] = message
}

// ResolveTicker treats any quoted ticker as tradable.
func (p *PaperBroker) ResolveTicker(_ context.Context, ticker string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	upper := strings.ToUpper(ticker)
	if _, ok := p.prices[upper]; !ok {
		return "", nil
	}
	return upper + "_EQ", nil
}

func (p *PaperBroker) CurrentPrice(_ context.Context, ticker string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.prices[strings.ToUpper(ticker)]
	if !ok {
		return 0, fmt.Errorf("no quote for %s", ticker)
	}
	return price, nil
}

func (p *PaperBroker) PlaceMarketOrder(_ context.Context, accountID, brokerTicker string, quantity float64) (*Fill, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ticker := strings.ToUpper(strings.TrimSuffix(brokerTicker, "_EQ"))
	if msg, ok := p.rejects[ticker]; ok {
		return nil, &OrderError{StatusCode: 400, Message: msg}
	}
	price, ok := p.prices[ticker]
	if !ok {
		return nil, &OrderError{StatusCode: 404, Message: "unknown instrument"}
	}

	value := quantity * price
	if _, tracked := p.cash[accountID]; tracked {
		p.cash[accountID] -= value
	}
	p.positions[accountID] = append(p.positions[accountID], model.Position{
		Ticker:      ticker,
		Quantity:    quantity,
		AvgBuyPrice: price,
		OpenedAt:    p.now(),
		AccountID:   accountID,
	})

	return &Fill{
		OrderID:   uuid.New().String(),
		Ticker:    ticker,
		Quantity:  quantity,
		Value:     value,
		Price:     price,
		CreatedAt: p.now(),
	}, nil
}

func (p *PaperBroker) Positions(_ context.Context, accountID string) ([]model.Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Position, len(p.positions[accountID]))
	copy(out, p.positions[accountID])
	return out, nil
}

// AvailableCash reports the balance seeded via SetCash, net of fills.
// Accounts that were never seeded are not cash-tracked and return an
// error, which callers treat the same as a live venue's lookup failure.
func (p *PaperBroker) AvailableCash(_ context.Context, accountID string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cash, ok := p.cash[accountID]
	if !ok {
		return 0, fmt.Errorf("cash not tracked for account %s", accountID)
	}
	return cash, nil
}

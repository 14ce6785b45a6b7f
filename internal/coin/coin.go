package coin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/storage"
)

// PriceSource fetches daily closing prices from a market data provider.
type PriceSource interface {
	// DailyClosingPrices returns closing prices for a symbol from the given
	// date (inclusive) to the present, ordered by date ASC. A nil from
	// means the full available history. A from date in the future yields
	// an empty result. Fails if the symbol cannot be resolved.
	DailyClosingPrices(ctx context.Context, symbol string, from *time.Time) ([]domain.HistoricalPrice, error)
}

// Coin is a cryptocurrency whose price history is fetched from a
// PriceSource and cached in a storage.PriceStore.
type Coin struct {
	Name   string
	Symbol string

	source PriceSource
	store  storage.PriceStore

	mu      sync.Mutex
	history *PriceHistory
}

// NewCoin creates a Coin. Source and store may be nil when price histories
// are always supplied directly to backtests.
func NewCoin(name, symbol string, source PriceSource, store storage.PriceStore) *Coin {
	return &Coin{Name: name, Symbol: symbol, source: source, store: store}
}

// PriceHistory returns the coin's full cached price history, fetching and
// caching it first if the store has nothing for this symbol. The result is
// memoized for the lifetime of the Coin.
func (c *Coin) PriceHistory(ctx context.Context) (*PriceHistory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.history != nil {
		return c.history, nil
	}
	if c.store == nil {
		return nil, fmt.Errorf("no price store configured for %s", c.Symbol)
	}

	prices, err := c.store.Load(ctx, c.Symbol)
	if errors.Is(err, storage.ErrNotFound) {
		if _, err := c.updateLocked(ctx); err != nil {
			return nil, err
		}
		prices, err = c.store.Load(ctx, c.Symbol)
		if err != nil {
			return nil, fmt.Errorf("load price history for %s: %w", c.Symbol, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load price history for %s: %w", c.Symbol, err)
	}

	history, err := NewPriceHistory(prices)
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", c.Symbol, err)
	}

	c.history = history
	return c.history, nil
}

// UpdatePriceHistory fetches prices newer than the cached history and
// appends them to the store. Returns the newly added prices. The memoized
// history is invalidated so the next PriceHistory call sees the new rows.
func (c *Coin) UpdatePriceHistory(ctx context.Context) ([]domain.HistoricalPrice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	added, err := c.updateLocked(ctx)
	if err != nil {
		return nil, err
	}
	if len(added) > 0 {
		c.history = nil
	}
	return added, nil
}

func (c *Coin) updateLocked(ctx context.Context) ([]domain.HistoricalPrice, error) {
	if c.source == nil {
		return nil, fmt.Errorf("no price source configured for %s", c.Symbol)
	}
	if c.store == nil {
		return nil, fmt.Errorf("no price store configured for %s", c.Symbol)
	}

	var from *time.Time
	cached, err := c.store.Load(ctx, c.Symbol)
	switch {
	case err == nil:
		next := storage.LastDate(cached).AddDate(0, 0, 1)
		from = &next
	case errors.Is(err, storage.ErrNotFound):
		// No cache yet, fetch the full history.
	default:
		return nil, fmt.Errorf("load cached prices for %s: %w", c.Symbol, err)
	}

	added, err := c.source.DailyClosingPrices(ctx, c.Symbol, from)
	if err != nil {
		return nil, fmt.Errorf("fetch prices for %s: %w", c.Symbol, err)
	}
	if len(added) == 0 {
		return nil, nil
	}

	if err := c.store.Append(ctx, c.Symbol, added); err != nil {
		return nil, fmt.Errorf("append prices for %s: %w", c.Symbol, err)
	}
	return added, nil
}

package storage

import (
	"context"
	"time"

	"grid-trade-lab/internal/domain"
)

// PriceStore is the daily closing price cache, keyed by coin symbol.
// Histories are append-only: new rows extend a symbol's series, existing
// rows are never rewritten.
type PriceStore interface {
	// Load retrieves the cached history for a symbol, ordered by date ASC.
	// Returns ErrNotFound if the symbol has no cached prices.
	Load(ctx context.Context, symbol string) ([]domain.HistoricalPrice, error)

	// Append adds newly fetched prices to a symbol's history.
	// Prices must be ordered by date ASC and dated after any cached rows.
	Append(ctx context.Context, symbol string, prices []domain.HistoricalPrice) error
}

// LastDate returns the date of the most recent price in a series,
// or the zero time for an empty series.
func LastDate(prices []domain.HistoricalPrice) time.Time {
	if len(prices) == 0 {
		return time.Time{}
	}
	return prices[len(prices)-1].Date
}

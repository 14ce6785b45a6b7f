// Package memory provides in-memory store implementations, used in tests
// and for backtests that never touch a database.
package memory

import (
	"context"
	"sync"

	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/storage"
)

// PriceStore is an in-memory implementation of storage.PriceStore.
type PriceStore struct {
	mu   sync.RWMutex
	data map[string][]domain.HistoricalPrice // keyed by symbol
}

// NewPriceStore creates a new in-memory price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{
		data: make(map[string][]domain.HistoricalPrice),
	}
}

// Load retrieves the cached history for a symbol. Returns ErrNotFound if
// the symbol has no cached prices.
func (s *PriceStore) Load(_ context.Context, symbol string) ([]domain.HistoricalPrice, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	prices, exists := s.data[symbol]
	if !exists || len(prices) == 0 {
		return nil, storage.ErrNotFound
	}

	// Return a copy to prevent external mutation
	result := make([]domain.HistoricalPrice, len(prices))
	copy(result, prices)
	return result, nil
}

// Append adds newly fetched prices to a symbol's history. Rows must be
// dated after any cached rows.
func (s *PriceStore) Append(_ context.Context, symbol string, prices []domain.HistoricalPrice) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(prices) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[symbol]
	if len(existing) > 0 && !prices[0].Date.After(storage.LastDate(existing)) {
		return storage.ErrInvalidInput
	}

	s.data[symbol] = append(existing, prices...)
	return nil
}

var _ storage.PriceStore = (*PriceStore)(nil)

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/observability"
	"grid-trade-lab/internal/storage"
)

// PriceStore is a PostgreSQL implementation of storage.PriceStore.
// One row per (symbol, date); the primary key rejects rewrites.
type PriceStore struct {
	pool *Pool
}

// NewPriceStore creates a new PostgreSQL price store.
func NewPriceStore(pool *Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// Load retrieves the cached history for a symbol, ordered by date ASC.
// Returns ErrNotFound if the symbol has no cached prices.
func (s *PriceStore) Load(ctx context.Context, symbol string) ([]domain.HistoricalPrice, error) {
	started := time.Now()
	prices, err := s.load(ctx, symbol)

	// A cache miss is a normal outcome, not a query failure.
	queryErr := err
	if errors.Is(queryErr, storage.ErrNotFound) {
		queryErr = nil
	}
	observability.RecordStoreQuery("postgres", "load", time.Since(started).Seconds(), queryErr)
	if err == nil {
		observability.RecordCachedRows(symbol, len(prices))
	}
	return prices, err
}

func (s *PriceStore) load(ctx context.Context, symbol string) ([]domain.HistoricalPrice, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx, `
		SELECT date, closing_price
		FROM price_history
		WHERE symbol = $1
		ORDER BY date ASC
	`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var prices []domain.HistoricalPrice
	for rows.Next() {
		var p domain.HistoricalPrice
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		p.Date = domain.Day(p.Date.UTC())
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read price rows: %w", err)
	}

	if len(prices) == 0 {
		return nil, storage.ErrNotFound
	}
	return prices, nil
}

// Append adds newly fetched prices to a symbol's history. Rows must be
// dated after any cached rows; a clashing date fails the whole batch.
func (s *PriceStore) Append(ctx context.Context, symbol string, prices []domain.HistoricalPrice) error {
	started := time.Now()
	err := s.append(ctx, symbol, prices)
	observability.RecordStoreQuery("postgres", "append", time.Since(started).Seconds(), err)
	return err
}

func (s *PriceStore) append(ctx context.Context, symbol string, prices []domain.HistoricalPrice) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(prices) == 0 {
		return nil
	}

	last, err := s.lastDate(ctx, symbol)
	if err != nil {
		return err
	}
	if !last.IsZero() && !prices[0].Date.After(last) {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range prices {
		_, err := tx.Exec(ctx, `
			INSERT INTO price_history (symbol, date, closing_price)
			VALUES ($1, $2, $3)
		`, symbol, p.Date, p.Price)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert price row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// lastDate returns the newest cached date for a symbol, or the zero time
// when nothing is cached.
func (s *PriceStore) lastDate(ctx context.Context, symbol string) (time.Time, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT date
		FROM price_history
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT 1
	`, symbol)

	var last time.Time
	if err := row.Scan(&last); err != nil {
		if isNotFoundError(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("query last price date: %w", err)
	}
	return domain.Day(last.UTC()), nil
}

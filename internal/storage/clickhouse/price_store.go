package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/observability"
	"grid-trade-lab/internal/storage"
)

// PriceStore is a ClickHouse implementation of storage.PriceStore.
// The table doesn't enforce uniqueness at insert time, so Append checks
// the newest cached date before writing.
type PriceStore struct {
	conn *Conn
}

// NewPriceStore creates a new ClickHouse price store.
func NewPriceStore(conn *Conn) *PriceStore {
	return &PriceStore{conn: conn}
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
	observability.RecordStoreQuery("clickhouse", "load", time.Since(started).Seconds(), queryErr)
	if err == nil {
		observability.RecordCachedRows(symbol, len(prices))
	}
	return prices, err
}

func (s *PriceStore) load(ctx context.Context, symbol string) ([]domain.HistoricalPrice, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.conn.Query(ctx, `
		SELECT date, closing_price
		FROM price_history
		WHERE symbol = ?
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

// Append adds newly fetched prices to a symbol's history via a batch
// insert. Rows must be dated after any cached rows.
func (s *PriceStore) Append(ctx context.Context, symbol string, prices []domain.HistoricalPrice) error {
	started := time.Now()
	err := s.append(ctx, symbol, prices)
	observability.RecordStoreQuery("clickhouse", "append", time.Since(started).Seconds(), err)
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

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (symbol, date, closing_price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range prices {
		if err := batch.Append(symbol, p.Date, p.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func (s *PriceStore) lastDate(ctx context.Context, symbol string) (time.Time, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT max(date)
		FROM price_history
		WHERE symbol = ?
	`, symbol)

	var last time.Time
	if err := row.Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("query last price date: %w", err)
	}
	// max(date) on an empty set yields the epoch default.
	if last.Year() <= 1970 {
		return time.Time{}, nil
	}
	return domain.Day(last.UTC()), nil
}

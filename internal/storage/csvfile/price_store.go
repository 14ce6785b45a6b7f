// Package csvfile stores price histories as one CSV file per symbol, for
// runs that want a durable local cache without a database.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/storage"
)

const dateLayout = "2006-01-02"

// PriceStore is a storage.PriceStore backed by CSV files in a directory.
// Each symbol's history lives in <dir>/<symbol>.csv with a
// "date,closingPrice" header.
type PriceStore struct {
	dir string
}

// NewPriceStore creates a CSV price store rooted at dir. The directory is
// created on first write.
func NewPriceStore(dir string) *PriceStore {
	return &PriceStore{dir: dir}
}

func (s *PriceStore) filePath(symbol string) string {
	return filepath.Join(s.dir, symbol+".csv")
}

// Load reads the cached history for a symbol. Returns ErrNotFound when no
// file exists for the symbol.
func (s *PriceStore) Load(_ context.Context, symbol string) ([]domain.HistoricalPrice, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	f, err := os.Open(s.filePath(symbol))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open price file for %s: %w", symbol, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse price file for %s: %w", symbol, err)
	}
	if len(records) < 2 {
		return nil, storage.ErrNotFound
	}

	prices := make([]domain.HistoricalPrice, 0, len(records)-1)
	for _, record := range records[1:] { // skip header
		if len(record) != 2 {
			return nil, fmt.Errorf("price file for %s: malformed row %v", symbol, record)
		}
		date, err := time.ParseInLocation(dateLayout, record[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("price file for %s: %w", symbol, err)
		}
		price, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("price file for %s: %w", symbol, err)
		}
		prices = append(prices, domain.HistoricalPrice{Date: date, Price: price})
	}

	return prices, nil
}

// Append adds newly fetched prices to a symbol's file, writing the header
// first when the file is new. Rows must be dated after the cached ones.
func (s *PriceStore) Append(ctx context.Context, symbol string, prices []domain.HistoricalPrice) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(prices) == 0 {
		return nil
	}

	existing, err := s.Load(ctx, symbol)
	if err != nil && err != storage.ErrNotFound {
		return err
	}
	if len(existing) > 0 && !prices[0].Date.After(storage.LastDate(existing)) {
		return storage.ErrInvalidInput
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create price store directory: %w", err)
	}

	f, err := os.OpenFile(s.filePath(symbol), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open price file for %s: %w", symbol, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(existing) == 0 {
		if err := w.Write([]string{"date", "closingPrice"}); err != nil {
			return fmt.Errorf("write price file for %s: %w", symbol, err)
		}
	}
	for _, price := range prices {
		record := []string{
			price.Date.Format(dateLayout),
			strconv.FormatFloat(price.Price, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write price file for %s: %w", symbol, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write price file for %s: %w", symbol, err)
	}

	return nil
}

var _ storage.PriceStore = (*PriceStore)(nil)

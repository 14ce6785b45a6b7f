package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/storage"
)

func day(d int) time.Time {
	return time.Date(2021, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceStoreRoundTrip(t *testing.T) {
	store := NewPriceStore(t.TempDir())
	ctx := context.Background()

	prices := []domain.HistoricalPrice{
		{Date: day(1), Price: 100},
		{Date: day(2), Price: 110.25},
	}
	require.NoError(t, store.Append(ctx, "BTC", prices))

	loaded, err := store.Load(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, prices, loaded)
}

func TestPriceStoreAppendExtendsFile(t *testing.T) {
	store := NewPriceStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(1), Price: 100}}))
	require.NoError(t, store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(2), Price: 110}}))

	loaded, err := store.Load(ctx, "BTC")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, day(2), loaded[1].Date)
}

func TestPriceStoreLoadMissing(t *testing.T) {
	store := NewPriceStore(t.TempDir())

	_, err := store.Load(context.Background(), "BTC")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPriceStoreRejectsOutOfOrderAppend(t *testing.T) {
	store := NewPriceStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(2), Price: 110}}))

	err := store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(1), Price: 100}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestPriceStoreFileFormat(t *testing.T) {
	dir := t.TempDir()
	store := NewPriceStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(1), Price: 100}}))

	raw, err := os.ReadFile(filepath.Join(dir, "BTC.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,closingPrice\n2021-01-01,100\n", string(raw))
}

func TestPriceStoreLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	store := NewPriceStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "BTC.csv"),
		[]byte("date,closingPrice\nnot-a-date,100\n"), 0o644))

	_, err := store.Load(context.Background(), "BTC")
	assert.Error(t, err)
}

package memory

import (
	"context"
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

func TestPriceStoreLoadMissing(t *testing.T) {
	store := NewPriceStore()

	_, err := store.Load(context.Background(), "BTC")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Load(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestPriceStoreAppendAndLoad(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()

	first := []domain.HistoricalPrice{
		{Date: day(1), Price: 100},
		{Date: day(2), Price: 110},
	}
	require.NoError(t, store.Append(ctx, "BTC", first))

	second := []domain.HistoricalPrice{{Date: day(3), Price: 120}}
	require.NoError(t, store.Append(ctx, "BTC", second))

	prices, err := store.Load(ctx, "BTC")
	require.NoError(t, err)
	require.Len(t, prices, 3)
	assert.Equal(t, 120.0, prices[2].Price)

	// Loaded slice is a copy.
	prices[0].Price = 0
	reloaded, err := store.Load(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 100.0, reloaded[0].Price)
}

func TestPriceStoreAppendRejectsOutOfOrderRows(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(2), Price: 110}}))

	err := store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(1), Price: 100}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(2), Price: 110}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestPriceStoreSymbolsAreIndependent(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(1), Price: 100}}))
	require.NoError(t, store.Append(ctx, "ETH", []domain.HistoricalPrice{{Date: day(1), Price: 10}}))

	btc, err := store.Load(ctx, "BTC")
	require.NoError(t, err)
	eth, err := store.Load(ctx, "ETH")
	require.NoError(t, err)

	assert.Equal(t, 100.0, btc[0].Price)
	assert.Equal(t, 10.0, eth[0].Price)
}

package clickhouse

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
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(conn)
	_, err := store.Load(context.Background(), "BTC")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPriceStoreAppendAndLoad(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(conn)
	ctx := context.Background()

	prices := []domain.HistoricalPrice{
		{Date: day(1), Price: 100},
		{Date: day(2), Price: 110.25},
	}
	require.NoError(t, store.Append(ctx, "BTC", prices))
	require.NoError(t, store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(3), Price: 120}}))

	loaded, err := store.Load(ctx, "BTC")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, day(1), loaded[0].Date)
	assert.Equal(t, 100.0, loaded[0].Price)
	assert.Equal(t, 110.25, loaded[1].Price)
	assert.Equal(t, day(3), loaded[2].Date)
}

func TestPriceStoreAppendRejectsOutOfOrderRows(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(conn)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(2), Price: 110}}))

	err := store.Append(ctx, "BTC", []domain.HistoricalPrice{{Date: day(1), Price: 100}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestPriceStoreSymbolsAreIndependent(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(conn)
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

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`
-- comment
CREATE TABLE a (x Int32) ENGINE = Memory;

CREATE TABLE b (y Int32) ENGINE = Memory;
`)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE a")
	assert.Contains(t, stmts[1], "CREATE TABLE b")
}

package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/param"
)

func TestOptimisticGridOnlySellsAboveAndBuysBelowPreviousHighs(t *testing.T) {
	s, err := NewOptimisticGrid(testCoin(), 50, 100, 20, 20, false)
	require.NoError(t, err)

	// Sell anchor stays at the last sell: after the $1000 sell the buy
	// trigger ratchets down with each buy ($500, then $250) while the
	// sell trigger stays $2000 until it finally fires.
	results, err := Backtest(context.Background(), s, BacktestInput{
		CoinAmount: 1,
		CashAmount: 1000,
		Exchange:   exchange.Free,
		Prices: []domain.HistoricalPrice{
			{Date: date(2014, time.February, 1), Price: 500},
			{Date: date(2014, time.March, 1), Price: 1000},
			{Date: date(2014, time.March, 15), Price: 1400},
			{Date: date(2014, time.April, 1), Price: 500},
			{Date: date(2014, time.May, 1), Price: 400},
			{Date: date(2014, time.June, 1), Price: 600},
			{Date: date(2014, time.July, 1), Price: 1200},
			{Date: date(2014, time.August, 1), Price: 250},
			{Date: date(2014, time.September, 1), Price: 2000},
		},
	})
	require.NoError(t, err)

	assert.Len(t, results.Trades, 4)
	assert.Len(t, results.Buys(), 2)
	assert.Len(t, results.Sells(), 2)
	assert.Equal(t, 1.0, results.StartingCoinAmount)
	assert.Equal(t, 1000.0, results.StartingCashAmount)
	assert.InDelta(t, 1.6384, results.EndingCoinAmount, 1e-6)
	assert.InDelta(t, 1587.2, results.EndingCashAmount, 1e-6)
	assert.InDelta(t, 1500.0, results.StartingValue(), 1e-9)
	assert.InDelta(t, 4864.0, results.EndingValue(), 1e-6)
	assert.InDelta(t, 3364.0, results.Profit(), 1e-6)
	assert.InDelta(t, 224.266, results.PercentageYield(), 1e-3)
	assert.True(t, results.IsProfitable())
}

func TestNewOptimisticGridRejectsInvalidPercentages(t *testing.T) {
	var invalidErr *param.InvalidParameterError

	_, err := NewOptimisticGrid(testCoin(), 50, 100, 101, 20, false)
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "buyPercentage", invalidErr.Parameter)

	_, err = NewOptimisticGrid(testCoin(), 50, 100, 20, -1, false)
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "sellPercentage", invalidErr.Parameter)
}

func TestNewOptimisticGridRejectsInvalidThresholds(t *testing.T) {
	var invalidErr *param.InvalidParameterError

	_, err := NewOptimisticGrid(testCoin(), 150, 100, 20, 20, false)
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "buyThreshold", invalidErr.Parameter)

	_, err = NewOptimisticGrid(testCoin(), 50, -1, 20, 20, false)
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "sellThreshold", invalidErr.Parameter)
}

func TestOptimisticGridWithValues(t *testing.T) {
	original, err := NewOptimisticGrid(testCoin(), 50, 100, 20, 20, false)
	require.NoError(t, err)

	configured, err := original.WithValues(map[string]float64{
		"buyThreshold":   25,
		"sellPercentage": 50,
	})
	require.NoError(t, err)

	grid := configured.(*OptimisticGrid)
	assert.Equal(t, 25.0, grid.BuyThreshold)
	assert.Equal(t, 50.0, grid.SellPercentage)
	assert.Equal(t, 100.0, grid.SellThreshold)
	assert.Equal(t, 50.0, original.BuyThreshold)
}

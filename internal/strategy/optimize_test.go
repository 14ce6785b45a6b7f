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

var optimizePrices = []domain.HistoricalPrice{
	{Date: date(2014, time.February, 1), Price: 100},
	{Date: date(2014, time.March, 1), Price: 200},
	{Date: date(2014, time.April, 1), Price: 300},
	{Date: date(2014, time.May, 1), Price: 50},
}

func fullSweepRanges() map[string]param.Range {
	return map[string]param.Range{
		"buyThreshold":    {Minimum: 0, Maximum: 100, Step: 10},
		"sellThreshold":   {Minimum: 0, Maximum: 100, Step: 10},
		"tradePercentage": {Minimum: 0, Maximum: 100, Step: 10},
	}
}

func TestOptimizeRanksAllCombinations(t *testing.T) {
	results, err := Optimize(context.Background(), newNaiveGridFixture(t), OptimizeInput{
		BacktestInput: BacktestInput{
			CoinAmount: 1,
			CashAmount: 1000,
			Exchange:   exchange.CoinbasePro,
			Prices:     optimizePrices,
		},
		ParameterRanges: fullSweepRanges(),
	})
	require.NoError(t, err)

	// 3 parameters with 11 values each.
	require.Len(t, results.All, 1331)
	require.Len(t, results.Unsorted, 1331)

	for i := 1; i < len(results.All); i++ {
		assert.GreaterOrEqual(t,
			results.All[i-1].BacktestResults.Profit(),
			results.All[i].BacktestResults.Profit(),
		)
	}

	assert.Equal(t, results.All[0], results.Best())
	assert.Equal(t, results.All[len(results.All)-1], results.Worst())
	assert.GreaterOrEqual(t, results.Best().BacktestResults.Profit(), results.Worst().BacktestResults.Profit())
}

func TestOptimizeSweepDoesNotMutateStrategy(t *testing.T) {
	s := newNaiveGridFixture(t)

	_, err := Optimize(context.Background(), s, OptimizeInput{
		BacktestInput: BacktestInput{
			CoinAmount: 1,
			CashAmount: 1000,
			Exchange:   exchange.CoinbasePro,
			Prices:     optimizePrices,
		},
		ParameterRanges: fullSweepRanges(),
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, s.BuyThreshold)
	assert.Equal(t, 10.0, s.SellThreshold)
	assert.Equal(t, 10.0, s.TradePercentage)
}

func TestOptimizeFailsOnMissingRange(t *testing.T) {
	_, err := Optimize(context.Background(), newNaiveGridFixture(t), OptimizeInput{
		BacktestInput: BacktestInput{
			CoinAmount: 1,
			CashAmount: 1000,
			Exchange:   exchange.CoinbasePro,
			Prices:     optimizePrices,
		},
		ParameterRanges: map[string]param.Range{
			"buyThreshold": {Minimum: 0, Maximum: 100, Step: 10},
		},
	})

	var rangeErr *param.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.True(t, rangeErr.Missing)
	assert.Equal(t, "sellThreshold", rangeErr.Parameter)
}

func TestOptimizeFailsOnOutOfBoundsRange(t *testing.T) {
	ranges := fullSweepRanges()
	ranges["buyThreshold"] = param.Range{Minimum: 0, Maximum: 101, Step: 10}

	_, err := Optimize(context.Background(), newNaiveGridFixture(t), OptimizeInput{
		BacktestInput: BacktestInput{
			CoinAmount: 1,
			CashAmount: 1000,
			Exchange:   exchange.CoinbasePro,
			Prices:     optimizePrices,
		},
		ParameterRanges: ranges,
	})

	var rangeErr *param.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "buyThreshold", rangeErr.Parameter)
	assert.Equal(t, 101.0, rangeErr.Value)
}

func TestOptimizeStableTieBreak(t *testing.T) {
	// Hodl has no parameters to sweep; give a two-parameter grid ranges
	// where every combination trades identically so all profits tie, then
	// check evaluation order is preserved.
	s, err := NewOptimisticGrid(testCoin(), 50, 100, 0, 0, false)
	require.NoError(t, err)

	results, err := Optimize(context.Background(), s, OptimizeInput{
		BacktestInput: BacktestInput{
			CoinAmount: 1,
			CashAmount: 1000,
			Exchange:   exchange.Free,
			Prices:     optimizePrices,
		},
		ParameterRanges: map[string]param.Range{
			"buyThreshold":   {Minimum: 10, Maximum: 20, Step: 10},
			"sellThreshold":  {Minimum: 500, Maximum: 600, Step: 100},
			"buyPercentage":  {Minimum: 0, Maximum: 0, Step: 1},
			"sellPercentage": {Minimum: 0, Maximum: 0, Step: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, results.All, 4)
	for i, result := range results.All {
		assert.Equal(t, results.Unsorted[i].ParameterValues, result.ParameterValues)
	}
}

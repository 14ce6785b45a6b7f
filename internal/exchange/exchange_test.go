package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-trade-lab/internal/domain"
)

func pricePoint(price float64) domain.HistoricalPrice {
	return domain.HistoricalPrice{
		Date:  time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		Price: price,
	}
}

func TestBuy(t *testing.T) {
	exec := CoinbasePro.Buy(100, pricePoint(100), 0, 200)

	require.Equal(t, domain.TradeTypeBuy, exec.Trade.Type)
	assert.InDelta(t, 1.0, exec.Trade.Amount, 1e-9)
	assert.Equal(t, 100.0, exec.Trade.Price)
	assert.InDelta(t, 1.0, exec.NewCoinAmount, 1e-9)
	assert.InDelta(t, 99.5, exec.NewCashAmount, 1e-9)
}

func TestBuyShrinksAmountWhenFeeExceedsCash(t *testing.T) {
	// Spending the full balance leaves no room for the fee, so the amount
	// is reduced by the fee and the fee recomputed on the reduced amount.
	exec := CoinbasePro.Buy(100, pricePoint(100), 0, 100)

	assert.InDelta(t, 0.995, exec.Trade.Amount, 1e-9)
	assert.InDelta(t, 0.995, exec.NewCoinAmount, 1e-9)
	assert.InDelta(t, 100-(99.5+99.5*0.005), exec.NewCashAmount, 1e-9)
	assert.GreaterOrEqual(t, exec.NewCashAmount, 0.0)
}

func TestBuyFreeExchange(t *testing.T) {
	exec := Free.Buy(100, pricePoint(50), 2, 100)

	assert.InDelta(t, 2.0, exec.Trade.Amount, 1e-9)
	assert.InDelta(t, 4.0, exec.NewCoinAmount, 1e-9)
	assert.InDelta(t, 0.0, exec.NewCashAmount, 1e-9)
}

func TestSell(t *testing.T) {
	exec := CoinbasePro.Sell(0.5, pricePoint(100), 1, 0)

	require.Equal(t, domain.TradeTypeSell, exec.Trade.Type)
	assert.InDelta(t, 0.5, exec.Trade.Amount, 1e-9)
	assert.Equal(t, 100.0, exec.Trade.Price)
	assert.InDelta(t, 0.5, exec.NewCoinAmount, 1e-9)
	assert.InDelta(t, 49.75, exec.NewCashAmount, 1e-9)
}

func TestSellFreeExchange(t *testing.T) {
	exec := Free.Sell(1, pricePoint(100), 1, 25)

	assert.InDelta(t, 0.0, exec.NewCoinAmount, 1e-9)
	assert.InDelta(t, 125.0, exec.NewCashAmount, 1e-9)
}

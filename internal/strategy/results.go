package strategy

import (
	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
)

// BacktestResults is the outcome of one backtest run. Constructed once by
// Backtest and never mutated; all yield figures are derived on demand.
type BacktestResults struct {
	Coin               *coin.Coin
	StartingCoinAmount float64
	StartingCashAmount float64
	EndingCoinAmount   float64
	EndingCashAmount   float64
	Trades             []domain.Trade
	PriceHistory       *coin.PriceHistory
	Exchange           exchange.Exchange
}

// StartingValue is the cash value of the starting holdings at the first
// price in the history.
func (r *BacktestResults) StartingValue() float64 {
	return r.StartingCashAmount + r.StartingCoinAmount*r.PriceHistory.StartingPrice()
}

// EndingValue is the cash value of the ending holdings at the last price
// in the history.
func (r *BacktestResults) EndingValue() float64 {
	return r.EndingCashAmount + r.EndingCoinAmount*r.PriceHistory.EndingPrice()
}

// Profit is the change in total value over the run.
func (r *BacktestResults) Profit() float64 {
	return r.EndingValue() - r.StartingValue()
}

// PercentageYieldFraction is the profit as a fraction of starting value.
func (r *BacktestResults) PercentageYieldFraction() float64 {
	return r.Profit() / r.StartingValue()
}

// PercentageYield is the profit as a percentage of starting value.
func (r *BacktestResults) PercentageYield() float64 {
	return r.PercentageYieldFraction() * 100
}

// Multiplier is the ending value as a multiple of the starting value.
func (r *BacktestResults) Multiplier() float64 {
	return 1.0 + r.PercentageYieldFraction()
}

// IsProfitable reports whether the run made money.
func (r *BacktestResults) IsProfitable() bool {
	return r.Profit() > 0
}

// Buys returns the buy trades in order.
func (r *BacktestResults) Buys() []domain.Trade {
	return r.filterTrades(domain.TradeTypeBuy)
}

// Sells returns the sell trades in order.
func (r *BacktestResults) Sells() []domain.Trade {
	return r.filterTrades(domain.TradeTypeSell)
}

func (r *BacktestResults) filterTrades(tradeType domain.TradeType) []domain.Trade {
	var trades []domain.Trade
	for _, trade := range r.Trades {
		if trade.Type == tradeType {
			trades = append(trades, trade)
		}
	}
	return trades
}

// DaysTraded is the number of whole days between the first and last date
// in the price history.
func (r *BacktestResults) DaysTraded() int {
	return int(r.PriceHistory.EndDate().Sub(r.PriceHistory.StartDate()).Hours() / 24)
}

// HodlComparison is a do-nothing baseline over the same price history:
// the starting holdings ride the market untouched.
func (r *BacktestResults) HodlComparison() *BacktestResults {
	return &BacktestResults{
		Coin:               r.Coin,
		StartingCoinAmount: r.StartingCoinAmount,
		StartingCashAmount: r.StartingCashAmount,
		EndingCoinAmount:   r.StartingCoinAmount,
		EndingCashAmount:   r.StartingCashAmount,
		PriceHistory:       r.PriceHistory,
		Exchange:           r.Exchange,
	}
}

// BuyAndHodlComparison is a baseline that spends all starting cash on a
// single buy at the first price and then holds.
func (r *BacktestResults) BuyAndHodlComparison() *BacktestResults {
	exec := r.Exchange.Buy(
		r.StartingCashAmount,
		r.PriceHistory.Prices()[0],
		r.StartingCoinAmount,
		r.StartingCashAmount,
	)

	return &BacktestResults{
		Coin:               r.Coin,
		StartingCoinAmount: exec.NewCoinAmount,
		StartingCashAmount: exec.NewCashAmount,
		EndingCoinAmount:   exec.NewCoinAmount,
		EndingCashAmount:   exec.NewCashAmount,
		Trades:             []domain.Trade{exec.Trade},
		PriceHistory:       r.PriceHistory,
		Exchange:           r.Exchange,
	}
}

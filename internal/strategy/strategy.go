// Package strategy implements grid-trading strategies and the backtest and
// optimization runners that evaluate them over daily price histories.
package strategy

import (
	"context"
	"fmt"
	"time"

	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/param"
)

// TradeResult is the trade sequence and ending holdings a strategy produced
// for one pass over a price history.
type TradeResult struct {
	Trades           []domain.Trade
	EndingCoinAmount float64
	EndingCashAmount float64
}

// Strategy produces trades from a daily price history.
// Implementations are immutable: configuring different parameter values via
// WithValues returns a new Strategy, so concurrent backtests never share
// mutable state.
type Strategy interface {
	// Name returns a human-readable strategy name.
	Name() string

	// Coin returns the coin the strategy trades.
	Coin() *coin.Coin

	// Parameters declares the tunable parameters an optimization can sweep.
	Parameters() []param.Parameter

	// GetTrades scans the price history day by day and returns the trades
	// that would have been made plus the ending holdings. Must not mutate
	// the price history. Deterministic given identical inputs.
	GetTrades(history *coin.PriceHistory, coinAmount, cashAmount float64, exch exchange.Exchange) TradeResult

	// WithValues returns a copy of the strategy configured with the given
	// parameter values. Fails with a param error when a value is out of
	// bounds or names an undeclared parameter.
	WithValues(values map[string]float64) (Strategy, error)
}

// BacktestInput holds everything a backtest run needs besides the strategy.
// PriceHistory takes precedence over Prices; when both are absent the
// history is fetched through the strategy's coin.
type BacktestInput struct {
	CoinAmount   float64
	CashAmount   float64
	Exchange     exchange.Exchange
	StartDate    *time.Time
	EndDate      *time.Time
	PriceHistory *coin.PriceHistory
	Prices       []domain.HistoricalPrice
}

// Backtest runs a strategy over historical prices to see what trades would
// have been made and what they would have returned.
func Backtest(ctx context.Context, s Strategy, in BacktestInput) (*BacktestResults, error) {
	history, err := resolvePriceHistory(ctx, s, in)
	if err != nil {
		return nil, err
	}

	result := s.GetTrades(history, in.CoinAmount, in.CashAmount, in.Exchange)

	return &BacktestResults{
		Coin:               s.Coin(),
		StartingCoinAmount: in.CoinAmount,
		StartingCashAmount: in.CashAmount,
		EndingCoinAmount:   result.EndingCoinAmount,
		EndingCashAmount:   result.EndingCashAmount,
		Trades:             result.Trades,
		PriceHistory:       history,
		Exchange:           in.Exchange,
	}, nil
}

// resolvePriceHistory picks the concrete history for a run: the supplied
// one, a wrapped raw price list, or the coin's cached history. Date bounds
// narrow the result via ForRange.
func resolvePriceHistory(ctx context.Context, s Strategy, in BacktestInput) (*coin.PriceHistory, error) {
	var history *coin.PriceHistory
	var err error

	switch {
	case in.PriceHistory != nil:
		history = in.PriceHistory
	case in.Prices != nil:
		history, err = coin.NewPriceHistory(in.Prices)
		if err != nil {
			return nil, err
		}
	default:
		c := s.Coin()
		if c == nil {
			return nil, fmt.Errorf("no price history supplied and no coin configured")
		}
		history, err = c.PriceHistory(ctx)
		if err != nil {
			return nil, err
		}
	}

	if in.StartDate != nil || in.EndDate != nil {
		history, err = history.ForRange(in.StartDate, in.EndDate)
		if err != nil {
			return nil, err
		}
	}

	return history, nil
}

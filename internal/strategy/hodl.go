package strategy

import (
	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/param"
)

// Hodl makes no trades at all; the starting holdings ride the market.
// Used as a do-nothing comparison baseline.
type Hodl struct {
	coin *coin.Coin
}

// NewHodl creates a Hodl strategy.
func NewHodl(c *coin.Coin) *Hodl {
	return &Hodl{coin: c}
}

func (s *Hodl) Name() string { return "Hodl" }

func (s *Hodl) Coin() *coin.Coin { return s.coin }

func (s *Hodl) Parameters() []param.Parameter { return nil }

func (s *Hodl) WithValues(values map[string]float64) (Strategy, error) {
	if err := applyValues(nil, values, func(string, float64) {}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Hodl) GetTrades(_ *coin.PriceHistory, coinAmount, cashAmount float64, _ exchange.Exchange) TradeResult {
	return TradeResult{
		EndingCoinAmount: coinAmount,
		EndingCashAmount: cashAmount,
	}
}

// BuyAndHodl spends all starting cash on a single buy at the first price
// and then holds through rain or shine.
type BuyAndHodl struct {
	coin *coin.Coin
}

// NewBuyAndHodl creates a BuyAndHodl strategy.
func NewBuyAndHodl(c *coin.Coin) *BuyAndHodl {
	return &BuyAndHodl{coin: c}
}

func (s *BuyAndHodl) Name() string { return "Buy and Hodl" }

func (s *BuyAndHodl) Coin() *coin.Coin { return s.coin }

func (s *BuyAndHodl) Parameters() []param.Parameter { return nil }

func (s *BuyAndHodl) WithValues(values map[string]float64) (Strategy, error) {
	if err := applyValues(nil, values, func(string, float64) {}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BuyAndHodl) GetTrades(history *coin.PriceHistory, coinAmount, cashAmount float64, exch exchange.Exchange) TradeResult {
	exec := exch.Buy(cashAmount, history.Prices()[0], coinAmount, cashAmount)

	return TradeResult{
		Trades:           []domain.Trade{exec.Trade},
		EndingCoinAmount: exec.NewCoinAmount,
		EndingCashAmount: exec.NewCashAmount,
	}
}

var (
	_ Strategy = (*Hodl)(nil)
	_ Strategy = (*BuyAndHodl)(nil)
)

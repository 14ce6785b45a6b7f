package strategy

import (
	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/param"
)

// OptimisticGrid keeps buying dips without resetting its sell target.
// The reference price updates only on a sell; after a buy, only the buy
// trigger ratchets down further while the sell trigger stays anchored to
// the last sell. Optimistic because it assumes the price will eventually
// climb back above that anchor.
type OptimisticGrid struct {
	coin *coin.Coin

	BuyThreshold   float64 // percentage drop that triggers a buy
	SellThreshold  float64 // percentage rise that triggers a sell
	BuyPercentage  float64 // percentage of the held cash to spend per buy
	SellPercentage float64 // percentage of the held coins to sell per sell
	HasPaperHands  bool    // invert to buy high and sell low
}

// NewOptimisticGrid creates an OptimisticGrid. Fails when the buy threshold
// or either trade percentage is outside 0-100, or the sell threshold is
// negative.
func NewOptimisticGrid(c *coin.Coin, buyThreshold, sellThreshold, buyPercentage, sellPercentage float64, hasPaperHands bool) (*OptimisticGrid, error) {
	if err := validatePercentage("buyThreshold", buyThreshold); err != nil {
		return nil, err
	}
	if err := validateNonNegative("sellThreshold", sellThreshold); err != nil {
		return nil, err
	}
	if err := validatePercentage("buyPercentage", buyPercentage); err != nil {
		return nil, err
	}
	if err := validatePercentage("sellPercentage", sellPercentage); err != nil {
		return nil, err
	}

	return &OptimisticGrid{
		coin:           c,
		BuyThreshold:   buyThreshold,
		SellThreshold:  sellThreshold,
		BuyPercentage:  buyPercentage,
		SellPercentage: sellPercentage,
		HasPaperHands:  hasPaperHands,
	}, nil
}

func (s *OptimisticGrid) Name() string { return "Optimistic Grid" }

func (s *OptimisticGrid) Coin() *coin.Coin { return s.coin }

func (s *OptimisticGrid) Parameters() []param.Parameter {
	return []param.Parameter{
		{
			Name:    "buyThreshold",
			Minimum: 0,
			Maximum: param.Float(100),
			Symbol:  param.Symbol{Symbol: "%", Position: param.SymbolPositionSuffix},
		},
		{
			Name:    "sellThreshold",
			Minimum: 0,
			Symbol:  param.Symbol{Symbol: "%", Position: param.SymbolPositionSuffix},
		},
		{
			Name:    "buyPercentage",
			Minimum: 0,
			Maximum: param.Float(100),
			Symbol:  param.Symbol{Symbol: "%", Position: param.SymbolPositionSuffix},
		},
		{
			Name:    "sellPercentage",
			Minimum: 0,
			Maximum: param.Float(100),
			Symbol:  param.Symbol{Symbol: "%", Position: param.SymbolPositionSuffix},
		},
	}
}

// WithValues returns a copy configured with the given parameter values.
func (s *OptimisticGrid) WithValues(values map[string]float64) (Strategy, error) {
	configured := *s
	err := applyValues(s.Parameters(), values, func(name string, value float64) {
		switch name {
		case "buyThreshold":
			configured.BuyThreshold = value
		case "sellThreshold":
			configured.SellThreshold = value
		case "buyPercentage":
			configured.BuyPercentage = value
		case "sellPercentage":
			configured.SellPercentage = value
		}
	})
	if err != nil {
		return nil, err
	}
	return &configured, nil
}

// GetTrades scans the history day by day. After a sell both triggers are
// recomputed from the sell price. After a buy the next buy trigger is the
// buy price times the buy threshold fraction, left unrounded; it collapses
// toward zero as buys stack up, which throttles runaway dip-buying.
func (s *OptimisticGrid) GetTrades(history *coin.PriceHistory, coinAmount, cashAmount float64, exch exchange.Exchange) TradeResult {
	referencePrice := history.StartingPrice()
	buyPrice := buyTriggerPrice(referencePrice, s.BuyThreshold)
	sellPrice := sellTriggerPrice(referencePrice, s.SellThreshold)

	var trades []domain.Trade
	for _, historicalPrice := range history.Prices() {
		trade, newCoinAmount, newCashAmount := evaluateTick(
			historicalPrice, buyPrice, sellPrice,
			s.BuyPercentage/100, s.SellPercentage/100,
			s.HasPaperHands, coinAmount, cashAmount, exch,
		)
		if trade == nil {
			continue
		}

		trades = append(trades, *trade)
		coinAmount = newCoinAmount
		cashAmount = newCashAmount

		if trade.IsSell() {
			referencePrice = trade.Price
			buyPrice = buyTriggerPrice(referencePrice, s.BuyThreshold)
			sellPrice = sellTriggerPrice(referencePrice, s.SellThreshold)
		} else {
			buyPrice = trade.Price * (s.BuyThreshold / 100)
		}
	}

	return TradeResult{
		Trades:           trades,
		EndingCoinAmount: coinAmount,
		EndingCashAmount: cashAmount,
	}
}

var _ Strategy = (*OptimisticGrid)(nil)

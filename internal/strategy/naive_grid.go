package strategy

import (
	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/param"
)

// NaiveGrid trades whenever the price moves by a threshold percentage from
// the last trade's price. It is naive because it can keep buying all the
// way down and sell lower than it bought when the price recovers only a
// little.
type NaiveGrid struct {
	coin *coin.Coin

	BuyThreshold    float64 // percentage drop that triggers a buy
	SellThreshold   float64 // percentage rise that triggers a sell
	TradePercentage float64 // percentage of the held cash or coins to trade
	HasPaperHands   bool    // invert to buy high and sell low
}

// NewNaiveGrid creates a NaiveGrid. Fails when the buy threshold or trade
// percentage is outside 0-100, or the sell threshold is negative.
func NewNaiveGrid(c *coin.Coin, buyThreshold, sellThreshold, tradePercentage float64, hasPaperHands bool) (*NaiveGrid, error) {
	if err := validatePercentage("buyThreshold", buyThreshold); err != nil {
		return nil, err
	}
	if err := validateNonNegative("sellThreshold", sellThreshold); err != nil {
		return nil, err
	}
	if err := validatePercentage("tradePercentage", tradePercentage); err != nil {
		return nil, err
	}

	return &NaiveGrid{
		coin:            c,
		BuyThreshold:    buyThreshold,
		SellThreshold:   sellThreshold,
		TradePercentage: tradePercentage,
		HasPaperHands:   hasPaperHands,
	}, nil
}

func (s *NaiveGrid) Name() string { return "Naive Grid" }

func (s *NaiveGrid) Coin() *coin.Coin { return s.coin }

func (s *NaiveGrid) Parameters() []param.Parameter {
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
			Name:    "tradePercentage",
			Minimum: 0,
			Maximum: param.Float(100),
			Symbol:  param.Symbol{Symbol: "%", Position: param.SymbolPositionSuffix},
		},
	}
}

// WithValues returns a copy configured with the given parameter values.
func (s *NaiveGrid) WithValues(values map[string]float64) (Strategy, error) {
	configured := *s
	err := applyValues(s.Parameters(), values, func(name string, value float64) {
		switch name {
		case "buyThreshold":
			configured.BuyThreshold = value
		case "sellThreshold":
			configured.SellThreshold = value
		case "tradePercentage":
			configured.TradePercentage = value
		}
	})
	if err != nil {
		return nil, err
	}
	return &configured, nil
}

// GetTrades scans the history day by day. The reference price starts at
// the first closing price and resets to the executed trade's price after
// every trade.
func (s *NaiveGrid) GetTrades(history *coin.PriceHistory, coinAmount, cashAmount float64, exch exchange.Exchange) TradeResult {
	tradeFraction := s.TradePercentage / 100

	referencePrice := history.StartingPrice()
	buyPrice := buyTriggerPrice(referencePrice, s.BuyThreshold)
	sellPrice := sellTriggerPrice(referencePrice, s.SellThreshold)

	var trades []domain.Trade
	for _, historicalPrice := range history.Prices() {
		trade, newCoinAmount, newCashAmount := evaluateTick(
			historicalPrice, buyPrice, sellPrice,
			tradeFraction, tradeFraction,
			s.HasPaperHands, coinAmount, cashAmount, exch,
		)
		if trade == nil {
			continue
		}

		trades = append(trades, *trade)
		coinAmount = newCoinAmount
		cashAmount = newCashAmount

		referencePrice = trade.Price
		buyPrice = buyTriggerPrice(referencePrice, s.BuyThreshold)
		sellPrice = sellTriggerPrice(referencePrice, s.SellThreshold)
	}

	return TradeResult{
		Trades:           trades,
		EndingCoinAmount: coinAmount,
		EndingCashAmount: cashAmount,
	}
}

var _ Strategy = (*NaiveGrid)(nil)

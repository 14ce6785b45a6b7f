package strategy

import (
	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/param"
)

// CostBasisGrid trades when the price moves by a threshold percentage
// relative to the weighted-average cost basis of the currently held coins,
// rather than the last trade's price. Consecutive trades on the same side
// double that side's threshold until an opposing trade resets it, which
// stops one side from firing on every small further move.
type CostBasisGrid struct {
	coin *coin.Coin

	BuyThreshold   float64 // percentage drop below cost basis that triggers a buy
	SellThreshold  float64 // percentage rise above cost basis that triggers a sell
	BuyPercentage  float64 // percentage of the held cash to spend per buy
	SellPercentage float64 // percentage of the held coins to sell per sell
	HasPaperHands  bool    // invert to buy high and sell low

	// CostBasis seeds the basis of the starting coin amount. Nil means the
	// starting coins are assumed bought at the first price in the history.
	CostBasis *float64
}

// NewCostBasisGrid creates a CostBasisGrid. Fails when the buy threshold or
// a trade percentage is outside 0-100, the sell threshold is negative, or
// the seeded cost basis is negative.
func NewCostBasisGrid(c *coin.Coin, buyThreshold, sellThreshold, buyPercentage, sellPercentage float64, hasPaperHands bool, costBasis *float64) (*CostBasisGrid, error) {
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
	if costBasis != nil && *costBasis < 0 {
		return nil, &param.InvalidParameterError{
			Parameter: "costBasis",
			Value:     *costBasis,
			Reason:    "cost basis must not be negative",
		}
	}

	return &CostBasisGrid{
		coin:           c,
		BuyThreshold:   buyThreshold,
		SellThreshold:  sellThreshold,
		BuyPercentage:  buyPercentage,
		SellPercentage: sellPercentage,
		HasPaperHands:  hasPaperHands,
		CostBasis:      costBasis,
	}, nil
}

func (s *CostBasisGrid) Name() string { return "Cost Basis Grid" }

func (s *CostBasisGrid) Coin() *coin.Coin { return s.coin }

func (s *CostBasisGrid) Parameters() []param.Parameter {
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
func (s *CostBasisGrid) WithValues(values map[string]float64) (Strategy, error) {
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

// GetTrades scans the history day by day. A synthetic original buy of the
// starting coins, dated one day before the history begins at the seeded
// basis (or the first price), anchors the cost-basis calculation. The
// threshold multipliers live for this run only.
func (s *CostBasisGrid) GetTrades(history *coin.PriceHistory, coinAmount, cashAmount float64, exch exchange.Exchange) TradeResult {
	costBasis := history.StartingPrice()
	if s.CostBasis != nil {
		costBasis = *s.CostBasis
	}

	originalBuy := domain.Trade{
		Type:   domain.TradeTypeBuy,
		Amount: coinAmount,
		Price:  costBasis,
		Date:   history.StartDate().AddDate(0, 0, -1),
	}

	buyMultiplier := 1.0
	sellMultiplier := 1.0
	buyPrice := s.buyPrice(costBasis, buyMultiplier)
	sellPrice := s.sellPrice(costBasis, sellMultiplier)

	var trades []domain.Trade
	var previousTradeType domain.TradeType

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
		costBasis = weightedCostBasis(coinAmount, originalBuy, trades)

		if trade.IsBuy() && (previousTradeType == "" || previousTradeType == domain.TradeTypeBuy) {
			buyMultiplier *= 2
		} else if buyMultiplier > 1 && trade.IsSell() {
			buyMultiplier = 1
		}

		if trade.IsSell() && (previousTradeType == "" || previousTradeType == domain.TradeTypeSell) {
			sellMultiplier *= 2
		} else if sellMultiplier > 1 && trade.IsBuy() {
			sellMultiplier = 1
		}

		buyPrice = s.buyPrice(costBasis, buyMultiplier)
		sellPrice = s.sellPrice(costBasis, sellMultiplier)
		previousTradeType = trade.Type
	}

	return TradeResult{
		Trades:           trades,
		EndingCoinAmount: coinAmount,
		EndingCashAmount: cashAmount,
	}
}

// buyPrice divides the buy trigger's distance from the basis by the
// multiplier, so consecutive buys need ever deeper drops.
func (s *CostBasisGrid) buyPrice(costBasis, multiplier float64) float64 {
	return roundToCents(costBasis * (1 - s.BuyThreshold/100) / multiplier)
}

// sellPrice multiplies the sell trigger's distance from the basis by the
// multiplier, so consecutive sells need ever higher rises.
func (s *CostBasisGrid) sellPrice(costBasis, multiplier float64) float64 {
	return roundToCents(costBasis * (1 + s.SellThreshold/100) * multiplier)
}

// weightedCostBasis computes the weighted-average price of the coins still
// held: sold amounts are netted against buys oldest-first, and whatever
// remains of each buy is weighted by its price over the current holdings.
func weightedCostBasis(coinAmount float64, originalBuy domain.Trade, trades []domain.Trade) float64 {
	var buys []domain.Trade
	buys = append(buys, originalBuy)
	soldAmount := 0.0
	for _, trade := range trades {
		if trade.IsBuy() {
			buys = append(buys, trade)
		} else {
			soldAmount += trade.Amount
		}
	}

	costBasis := 0.0
	for _, buy := range buys {
		remaining := buy.Amount
		if soldAmount > 0 {
			if soldAmount >= remaining {
				soldAmount -= remaining
				remaining = 0
			} else {
				remaining -= soldAmount
				soldAmount = 0
			}
		}

		if remaining > 0 {
			costBasis += (remaining / coinAmount) * buy.Price
		}
	}

	return costBasis
}

var _ Strategy = (*CostBasisGrid)(nil)

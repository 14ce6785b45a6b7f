// Package exchange models fee-aware trade execution on a cryptocurrency
// exchange. Buy and Sell are pure functions over supplied holdings; no
// rounding is applied here, that is the caller's concern.
package exchange

import (
	"grid-trade-lab/internal/domain"
)

// Exchange is a venue where coins are bought and sold for a flat
// proportional fee per trade. TradingFeePercentage is on a 0-100 scale.
type Exchange struct {
	Name                 string
	TradingFeePercentage float64
}

// Predefined exchanges. Free is useful as a zero-fee baseline.
var (
	CoinbasePro = Exchange{Name: "Coinbase Pro", TradingFeePercentage: 0.5}
	Free        = Exchange{Name: "Free", TradingFeePercentage: 0}
)

// Execution is the outcome of a single buy or sell.
type Execution struct {
	Trade         domain.Trade
	NewCoinAmount float64
	NewCashAmount float64
}

func (e Exchange) feeFraction() float64 {
	return e.TradingFeePercentage / 100
}

// Buy spends amount of cash on coins at the given historical price.
// If amount plus its fee would exceed the available cash, the amount is
// first shrunk by the fee and the fee recomputed on the reduced amount,
// so the total cash spent never exceeds what was requested. The executed
// amount is then slightly less than requested when funds are tight.
func (e Exchange) Buy(amount float64, price domain.HistoricalPrice, initialCoinAmount, initialCashAmount float64) Execution {
	fee := amount * e.feeFraction()
	if amount+fee > initialCashAmount {
		amount -= fee
		fee = amount * e.feeFraction()
	}

	coinsPurchased := amount / price.Price

	return Execution{
		Trade: domain.Trade{
			Type:   domain.TradeTypeBuy,
			Amount: coinsPurchased,
			Price:  price.Price,
			Date:   price.Date,
		},
		NewCoinAmount: initialCoinAmount + coinsPurchased,
		NewCashAmount: initialCashAmount - (amount + fee),
	}
}

// Sell sells amount of coins at the given historical price. The fee is
// taken out of the cash received; coins spent never exceed the amount, so
// no fee adjustment is needed on this side.
func (e Exchange) Sell(amount float64, price domain.HistoricalPrice, initialCoinAmount, initialCashAmount float64) Execution {
	cashReceived := amount * price.Price
	fee := cashReceived * e.feeFraction()

	return Execution{
		Trade: domain.Trade{
			Type:   domain.TradeTypeSell,
			Amount: amount,
			Price:  price.Price,
			Date:   price.Date,
		},
		NewCoinAmount: initialCoinAmount - amount,
		NewCashAmount: initialCashAmount + (cashReceived - fee),
	}
}

package strategy

import (
	"math"

	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/param"
)

// Trigger prices are rounded to cents before comparison so floating-point
// jitter in the threshold arithmetic cannot cause spurious non-triggers.
func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// buyTriggerPrice is the price at or below which a buy fires, threshold
// percent below the reference price.
func buyTriggerPrice(referencePrice, buyThreshold float64) float64 {
	return roundToCents(referencePrice * (1 - buyThreshold/100))
}

// sellTriggerPrice is the price at or above which a sell fires, threshold
// percent above the reference price.
func sellTriggerPrice(referencePrice, sellThreshold float64) float64 {
	return roundToCents(referencePrice * (1 + sellThreshold/100))
}

// evaluateTick decides the single trade, if any, for one price point.
// Buy is checked before sell; a trade is only attempted when the holdings
// it spends (cash for buy, coins for sell) are nonzero. hasPaperHands
// inverts the policy to buy high and sell low.
// Returns a nil trade and the unchanged holdings when nothing fires.
func evaluateTick(
	historicalPrice domain.HistoricalPrice,
	buyPrice, sellPrice float64,
	buyFraction, sellFraction float64,
	hasPaperHands bool,
	coinAmount, cashAmount float64,
	exch exchange.Exchange,
) (trade *domain.Trade, newCoinAmount, newCashAmount float64) {
	price := historicalPrice.Price

	var shouldBuy, shouldSell bool
	if !hasPaperHands {
		// Buy low, sell high
		shouldBuy = price <= buyPrice && cashAmount != 0
		shouldSell = price >= sellPrice && coinAmount != 0
	} else {
		// Buy high, sell low
		shouldBuy = price >= sellPrice && cashAmount != 0
		shouldSell = price <= buyPrice && coinAmount != 0
	}

	switch {
	case shouldBuy:
		exec := exch.Buy(buyFraction*cashAmount, historicalPrice, coinAmount, cashAmount)
		return &exec.Trade, exec.NewCoinAmount, exec.NewCashAmount
	case shouldSell:
		exec := exch.Sell(sellFraction*coinAmount, historicalPrice, coinAmount, cashAmount)
		return &exec.Trade, exec.NewCoinAmount, exec.NewCashAmount
	default:
		return nil, coinAmount, cashAmount
	}
}

// validatePercentage checks a 0-100 percentage parameter at construction.
func validatePercentage(name string, value float64) error {
	if value < 0 || value > 100 {
		return &param.InvalidParameterError{
			Parameter: name,
			Value:     value,
			Reason:    "percentage must be between 0 and 100",
		}
	}
	return nil
}

// validateNonNegative checks a parameter with no upper bound at
// construction, such as a sell threshold.
func validateNonNegative(name string, value float64) error {
	if value < 0 {
		return &param.InvalidParameterError{
			Parameter: name,
			Value:     value,
			Reason:    "must not be negative",
		}
	}
	return nil
}

// applyValues validates values against the declared parameters and calls
// apply for each one. Undeclared names are rejected so a sweep typo cannot
// silently configure nothing.
func applyValues(parameters []param.Parameter, values map[string]float64, apply func(name string, value float64)) error {
	declared := make(map[string]param.Parameter, len(parameters))
	for _, p := range parameters {
		declared[p.Name] = p
	}

	for name, value := range values {
		p, ok := declared[name]
		if !ok {
			return &param.InvalidParameterError{
				Parameter: name,
				Value:     value,
				Reason:    "parameter is not declared by this strategy",
			}
		}
		if err := p.Validate(value); err != nil {
			return err
		}
		apply(name, value)
	}
	return nil
}

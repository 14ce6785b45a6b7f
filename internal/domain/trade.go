package domain

import "time"

// TradeType identifies the side of a trade.
type TradeType string

// Trade sides.
const (
	TradeTypeBuy  TradeType = "Buy"
	TradeTypeSell TradeType = "Sell"
)

// Trade is an executed buy or sell of a coin.
// Amount is in coin units for both sides.
type Trade struct {
	Type   TradeType
	Amount float64
	Price  float64
	Date   time.Time
}

// IsBuy reports whether the trade is a buy.
func (t Trade) IsBuy() bool { return t.Type == TradeTypeBuy }

// IsSell reports whether the trade is a sell.
func (t Trade) IsSell() bool { return t.Type == TradeTypeSell }

package coin

import (
	"time"

	"grid-trade-lab/internal/domain"
)

// PriceHistory is an ordered, immutable-after-construction series of daily
// closing prices. Dates are unique and ascending (one closing price per day).
type PriceHistory struct {
	prices []domain.HistoricalPrice
	byDate map[time.Time]int
}

// NewPriceHistory builds a PriceHistory from prices ordered by date ASC.
// Returns ErrEmptyHistory when prices is empty.
func NewPriceHistory(prices []domain.HistoricalPrice) (*PriceHistory, error) {
	if len(prices) == 0 {
		return nil, ErrEmptyHistory
	}

	owned := make([]domain.HistoricalPrice, len(prices))
	copy(owned, prices)

	byDate := make(map[time.Time]int, len(owned))
	for i, p := range owned {
		byDate[p.Date] = i
	}

	return &PriceHistory{prices: owned, byDate: byDate}, nil
}

// Prices returns the underlying series. Callers must not modify it.
func (h *PriceHistory) Prices() []domain.HistoricalPrice { return h.prices }

// Len returns the number of price points.
func (h *PriceHistory) Len() int { return len(h.prices) }

// StartingPrice returns the first closing price in the series.
func (h *PriceHistory) StartingPrice() float64 { return h.prices[0].Price }

// EndingPrice returns the last closing price in the series.
func (h *PriceHistory) EndingPrice() float64 { return h.prices[len(h.prices)-1].Price }

// StartDate returns the first date in the series.
func (h *PriceHistory) StartDate() time.Time { return h.prices[0].Date }

// EndDate returns the last date in the series.
func (h *PriceHistory) EndDate() time.Time { return h.prices[len(h.prices)-1].Date }

// ForRange returns a new PriceHistory spanning startDate to endDate
// inclusive. Nil boundaries default to the existing bounds. Boundaries must
// match a date present in the series exactly; otherwise a
// DateOutOfRangeError naming the offending boundary is returned.
// The receiver is left untouched.
func (h *PriceHistory) ForRange(startDate, endDate *time.Time) (*PriceHistory, error) {
	start := h.StartDate()
	if startDate != nil {
		start = *startDate
	}
	end := h.EndDate()
	if endDate != nil {
		end = *endDate
	}

	startIndex, ok := h.byDate[start]
	if !ok {
		return nil, &DateOutOfRangeError{
			Boundary:   "startDate",
			Date:       start,
			RangeStart: h.StartDate(),
			RangeEnd:   h.EndDate(),
		}
	}
	endIndex, ok := h.byDate[end]
	if !ok {
		return nil, &DateOutOfRangeError{
			Boundary:   "endDate",
			Date:       end,
			RangeStart: h.StartDate(),
			RangeEnd:   h.EndDate(),
		}
	}

	// Inverted bounds select nothing.
	if startIndex > endIndex {
		return nil, ErrEmptyHistory
	}

	return NewPriceHistory(h.prices[startIndex : endIndex+1])
}

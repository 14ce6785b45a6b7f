package domain

import "time"

// HistoricalPrice is the closing price of a coin on a given day.
// Dates are UTC midnight; one price per coin per day.
type HistoricalPrice struct {
	Date  time.Time
	Price float64
}

// Day returns t truncated to UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package coin

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyHistory is returned when a price history is built with no prices.
var ErrEmptyHistory = errors.New("price history is empty")

// DateOutOfRangeError reports a range boundary with no exact match in a
// price history. Boundaries must name a date the series actually contains;
// nearest-match lookups are deliberately not supported.
type DateOutOfRangeError struct {
	Boundary   string // "startDate" or "endDate"
	Date       time.Time
	RangeStart time.Time
	RangeEnd   time.Time
}

func (e *DateOutOfRangeError) Error() string {
	return fmt.Sprintf("no historical price found for %s %s; supported price range is %s - %s",
		e.Boundary,
		e.Date.Format("2006-01-02"),
		e.RangeStart.Format("2006-01-02"),
		e.RangeEnd.Format("2006-01-02"),
	)
}

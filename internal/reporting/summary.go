package reporting

import (
	"fmt"
	"strings"
	"time"

	"grid-trade-lab/internal/strategy"
)

// Summary renders a short prose summary of a backtest run, comparing the
// outcome against hodling and against buying and hodling.
func Summary(r *strategy.BacktestResults) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("This strategy made a profit of $%s, with a yield of %s%%. That's a %sx!",
		FormatNumber(r.Profit(), 2),
		FormatNumber(r.PercentageYield(), 2),
		FormatNumber(r.Multiplier(), 2)))

	hodl := r.HodlComparison()
	sb.WriteString(fmt.Sprintf("\nThis was %s simply hodling, which would have made a profit of $%s / %s%% / %sx.",
		compareEndingValues(r, hodl),
		FormatNumber(hodl.Profit(), 2),
		FormatNumber(hodl.PercentageYield(), 2),
		FormatNumber(hodl.Multiplier(), 2)))

	buyAndHodl := r.BuyAndHodlComparison()
	sb.WriteString(fmt.Sprintf("\nThis was %s simply buying and hodling, which would have made a profit of $%s / %s%% / %sx.",
		compareEndingValues(r, buyAndHodl),
		FormatNumber(buyAndHodl.Profit(), 2),
		FormatNumber(buyAndHodl.PercentageYield(), 2),
		FormatNumber(buyAndHodl.Multiplier(), 2)))

	return sb.String()
}

// Numbers renders the key figures of a backtest run, one per line.
func Numbers(r *strategy.BacktestResults) string {
	var sb strings.Builder
	symbol := r.Coin.Symbol

	sb.WriteString(fmt.Sprintf("Profit: $%s / %s%% / %sx",
		FormatNumber(r.Profit(), 2),
		FormatNumber(r.PercentageYield(), 2),
		FormatNumber(r.Multiplier(), 2)))

	sb.WriteString(fmt.Sprintf("\n Value: $%s -> $%s",
		FormatNumber(r.StartingValue(), 2),
		FormatNumber(r.EndingValue(), 2)))

	sb.WriteString(fmt.Sprintf("\nAmount: %s %s / $%s -> %s %s / $%s",
		FormatNumber(r.StartingCoinAmount, 8), symbol,
		FormatNumber(r.StartingCashAmount, 2),
		FormatNumber(r.EndingCoinAmount, 8), symbol,
		FormatNumber(r.EndingCashAmount, 2)))

	sb.WriteString(fmt.Sprintf("\n Price: $%s/%s -> $%s/%s",
		FormatNumber(r.PriceHistory.StartingPrice(), 2), symbol,
		FormatNumber(r.PriceHistory.EndingPrice(), 2), symbol))

	sb.WriteString(fmt.Sprintf("\nTrades: %d trades (%d %s, %d %s)",
		len(r.Trades),
		len(r.Buys()), pluralize(len(r.Buys()), "buy", "buys"),
		len(r.Sells()), pluralize(len(r.Sells()), "sell", "sells")))

	sb.WriteString(fmt.Sprintf("\n  Time: %s (%s to %s)",
		formatSpan(r.PriceHistory.StartDate(), r.PriceHistory.EndDate()),
		FormatDate(r.PriceHistory.StartDate()),
		FormatDate(r.PriceHistory.EndDate())))

	return sb.String()
}

// Description renders the summary and figures together.
func Description(r *strategy.BacktestResults) string {
	return Summary(r) + "\n\n" + Numbers(r)
}

func compareEndingValues(r, baseline *strategy.BacktestResults) string {
	switch {
	case r.EndingValue() > baseline.EndingValue():
		return "better than"
	case r.EndingValue() < baseline.EndingValue():
		return "worse than"
	default:
		return "the same as"
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// formatSpan renders the calendar span between two dates as
// "N years, N months, N days", dropping zero units.
func formatSpan(start, end time.Time) string {
	years := 0
	for !start.AddDate(years+1, 0, 0).After(end) {
		years++
	}
	cursor := start.AddDate(years, 0, 0)

	months := 0
	for !cursor.AddDate(0, months+1, 0).After(end) {
		months++
	}
	cursor = cursor.AddDate(0, months, 0)

	days := int(end.Sub(cursor).Hours() / 24)

	var parts []string
	if years > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", years, pluralize(years, "year", "years")))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", months, pluralize(months, "month", "months")))
	}
	if days > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d %s", days, pluralize(days, "day", "days")))
	}
	return strings.Join(parts, ", ")
}

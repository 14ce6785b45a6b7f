package reporting

import (
	"fmt"
	"strings"
	"time"

	"grid-trade-lab/internal/strategy"
)

// RenderMarkdown renders optimization results as a Markdown leaderboard,
// best combination first.
func RenderMarkdown(name string, o *strategy.OptimizationResults) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s Optimization\n\n", name))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Combinations tested: %d\n\n", len(o.All)))

	// Swept ranges
	sb.WriteString("## Parameter Ranges\n\n")
	sb.WriteString("| Parameter | Minimum | Maximum | Step |\n")
	sb.WriteString("|-----------|---------|---------|------|\n")
	for _, p := range o.Parameters {
		r := o.ParameterRanges[p.Name]
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			p.Name, p.Format(r.Minimum), p.Format(r.Maximum), FormatNumber(r.Step, 6)))
	}
	sb.WriteString("\n")

	// Leaderboard
	sb.WriteString("## Leaderboard\n\n")
	sb.WriteString("| Rank |")
	for _, p := range o.Parameters {
		sb.WriteString(fmt.Sprintf(" %s |", p.Name))
	}
	sb.WriteString(" Profit | Yield | Multiplier | Trades |\n")

	sb.WriteString("|------|")
	for range o.Parameters {
		sb.WriteString("------|")
	}
	sb.WriteString("--------|-------|------------|--------|\n")

	for i, row := range o.All {
		sb.WriteString(fmt.Sprintf("| %d |", i+1))
		for _, p := range o.Parameters {
			sb.WriteString(fmt.Sprintf(" %s |", p.Format(row.ParameterValues[p.Name])))
		}
		results := row.BacktestResults
		sb.WriteString(fmt.Sprintf(" $%s | %s%% | %sx | %d |\n",
			FormatNumber(results.Profit(), 2),
			FormatNumber(results.PercentageYield(), 2),
			FormatNumber(results.Multiplier(), 4),
			len(results.Trades)))
	}
	sb.WriteString("\n")

	// Best run in detail
	best := o.Best()
	sb.WriteString("## Best Run\n\n")
	sb.WriteString("```\n")
	sb.WriteString(Numbers(best.BacktestResults))
	sb.WriteString("\n```\n")

	return sb.String()
}

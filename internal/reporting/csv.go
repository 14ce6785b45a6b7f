package reporting

import (
	"fmt"
	"strconv"
	"strings"

	"grid-trade-lab/internal/domain"
)

// RenderTradesCSV renders trades as a CSV string.
func RenderTradesCSV(trades []domain.Trade) string {
	var sb strings.Builder

	// Header
	sb.WriteString("date,type,amount,price\n")

	// Rows
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s\n",
			t.Date.Format("2006-01-02"),
			t.Type,
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
		))
	}

	return sb.String()
}

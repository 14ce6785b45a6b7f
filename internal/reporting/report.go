// Package reporting renders backtest and optimization results as text,
// Markdown, and CSV.
package reporting

import (
	"strconv"
	"strings"
	"time"
)

// FormatNumber formats a number for humans: rounded to at most
// maxDecimalPlaces, trailing zeros trimmed, thousands separated by commas.
func FormatNumber(v float64, maxDecimalPlaces int) string {
	s := strconv.FormatFloat(v, 'f', maxDecimalPlaces, 64)

	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.Index(s, "."); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot:]
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}
	sb.WriteString(fracPart)
	return sb.String()
}

// FormatDate formats a date for humans, e.g. "January 2, 2021".
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

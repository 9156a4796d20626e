package analytics

import (
	"math"
	"strconv"
	"strings"
)

// formatComma renders a number with thousands separators in the integer part
// ("1234567.5" -> "1,234,567.5"), matching the dashboard's locale formatting
// for KRW amounts.
func formatComma(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// formatSignedAmount renders a rounded P&L amount with an explicit sign
// ("+1,234" / "-567"), as shown in the recent-trades table.
func formatSignedAmount(v float64) string {
	r := math.Round(v)
	if r >= 0 {
		return "+" + formatComma(r)
	}
	return formatComma(r)
}

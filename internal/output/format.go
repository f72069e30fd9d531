package output

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency renders a currency cell under the matrix display
// conventions: magnitudes below 0.5 render as an empty string, negative
// values render as a parenthesized absolute value, and the integer part is
// grouped by thousands. 1234.6 renders as "$1,235", -1234.6 as "($1,235)".
func FormatCurrency(v float64) string {
	if math.Abs(v) < 0.5 {
		return ""
	}
	s := "$" + groupThousands(math.Round(math.Abs(v)))
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}

// FormatPercent renders a percent cell with one decimal and the same
// parenthesized-negative convention as currency.
func FormatPercent(v float64) string {
	s := fmt.Sprintf("%.1f%%", math.Abs(v))
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}

// FormatCount renders an integer count, blank when zero.
func FormatCount(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

// groupThousands formats a non-negative rounded value with comma separators.
func groupThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	n := len(s)
	if n <= 3 {
		return s
	}
	var sb strings.Builder
	lead := n % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

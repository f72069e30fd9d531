package output

import (
	"fmt"
	"strings"
)

// HeatPercent styles a retention percentage by band: green for healthy,
// yellow for middling, red for weak. Used by the cohort heatmap tables.
func HeatPercent(pct float64) string {
	label := FormatPercent(pct)
	switch {
	case pct >= 40:
		return StyleSuccess.Render(label)
	case pct >= 15:
		return StyleWarning.Render(label)
	default:
		return StyleError.Render(label)
	}
}

// InsightBadge returns a styled marker for an insight type.
func InsightBadge(insightType string) string {
	switch insightType {
	case "positive":
		return StyleSuccess.Render("▲")
	case "warning":
		return StyleError.Render("▼")
	default:
		return StyleMuted.Render("●")
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

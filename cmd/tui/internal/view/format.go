package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendviz/internal/report"
)

const (
	barWidth   = 40
	labelWidth = 24
)

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Bars renders one horizontal bar per label, scaled to the largest value.
// Negative values are drawn with a different glyph.
func Bars(labels []string, values []decimal.Decimal) string {
	peak := decimal.Zero
	for _, v := range values {
		peak = decimal.Max(peak, v.Abs())
	}

	var sb strings.Builder

	for i, label := range labels {
		v := values[i]

		n := 0
		if !peak.IsZero() {
			n = int(v.Abs().Div(peak).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart())
		}

		glyph := "█"
		if v.IsNegative() {
			glyph = "░"
		}

		fmt.Fprintf(&sb, "%-*s %s %s\n",
			labelWidth, truncate(label, labelWidth),
			barStyle.Render(strings.Repeat(glyph, n)),
			report.FormatAmount(v),
		)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

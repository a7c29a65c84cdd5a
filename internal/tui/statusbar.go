package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/altin/linesearch/internal/ui"
)

func RenderStatusBar(styles ui.Styles, status, hints string, width int) string {
	left := styles.Muted.Render("  " + status)
	help := styles.Muted.Render(hints + " ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 0 {
		gap = 0
	}
	return styles.Bar.Width(width).Render(left + spaces(gap) + help)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

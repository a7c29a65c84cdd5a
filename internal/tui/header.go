package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/altin/linesearch/internal/ui"
)

// RenderHeader shows the corpus size on the left and the running match
// total on the right.
func RenderHeader(styles ui.Styles, lines, matches int, width int) string {
	left := styles.Header.Render(fmt.Sprintf(" linesearch | %d lines", lines))

	style := styles.Muted
	if matches > 0 {
		style = styles.Total
	}
	right := style.Render(fmt.Sprintf("%d matches ", matches))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	return styles.Bar.Width(width).Render(left + spaces(gap) + right)
}

package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorFailure = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorInfo    = lipgloss.Color("#3B82F6")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorBar     = lipgloss.Color("#111827")
)

// Styles are bound to one output. A writer that is not a terminal gets a
// plain-text profile, so piped output and tests carry no escape codes.
type Styles struct {
	Header  lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Total   lipgloss.Style
	Prompt  lipgloss.Style
	Bar     lipgloss.Style
}

func NewStyles(w io.Writer) Styles {
	return NewStylesWithRenderer(lipgloss.NewRenderer(w))
}

func NewStylesWithRenderer(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:  r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Error:   r.NewStyle().Foreground(ColorFailure),
		Warning: r.NewStyle().Foreground(ColorWarning),
		Info:    r.NewStyle().Foreground(ColorInfo),
		Muted:   r.NewStyle().Foreground(ColorMuted),
		Total:   r.NewStyle().Bold(true).Foreground(ColorSuccess),
		Prompt:  r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Bar:     r.NewStyle().Foreground(ColorMuted).Background(ColorBar),
	}
}

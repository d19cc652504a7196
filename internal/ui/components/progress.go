package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/ui/theme"
)

// ProgressBar shows how far along the path a goal is, as a glyph bar
// with an optional label and percentage.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a bar at the given fill ratio, 0 to 1.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

// View renders the bar within the configured width.
func (p ProgressBar) View() string {
	label := ""
	if p.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + " "
	}
	suffix := ""
	if p.ShowPercent {
		suffix = lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf(" %3d%%", int(p.Percent*100)))
	}

	barWidth := p.Width - lipgloss.Width(label) - lipgloss.Width(suffix)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth)*p.Percent + 0.5)
	if filled > barWidth {
		filled = barWidth
	}

	bar := lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled))

	return label + bar + suffix
}

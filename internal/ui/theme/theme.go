package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/path"
)

// Color palette — calm study colors, readable on dark terminals
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#0EA5E9") // Sky
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#E2E8F0") // Light slate
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Conversation roles
var (
	Tutor = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Learner = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

// statusColors maps each concept status in the path lifecycle to a color.
var statusColors = map[path.Status]color.Color{
	path.StatusOpen:        TextDim,
	path.StatusActive:      lipgloss.Color("#F59E0B"), // Amber
	path.StatusSkipped:     lipgloss.Color("#64748B"), // Muted slate
	path.StatusReactivated: lipgloss.Color("#A855F7"), // Purple
	path.StatusMastered:    Success,
	path.StatusReview:      Error,
}

// StatusStyle returns the style for rendering a concept in the given status.
func StatusStyle(s path.Status) lipgloss.Style {
	c, ok := statusColors[s]
	if !ok {
		c = Text
	}
	return lipgloss.NewStyle().Foreground(c)
}

// StatusGlyph returns the marker drawn in front of a concept.
func StatusGlyph(s path.Status) string {
	switch s {
	case path.StatusOpen:
		return "○"
	case path.StatusActive:
		return "▶"
	case path.StatusSkipped:
		return "⤳"
	case path.StatusReactivated:
		return "↺"
	case path.StatusMastered:
		return "●"
	case path.StatusReview:
		return "!"
	default:
		return "?"
	}
}

// Package layout draws the app shell around whatever screen is active:
// a header bar, the content area, and a footer with key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/ui/theme"
)

// The TUI refuses to render below this size; text material and the
// transcript become unreadable when squeezed further.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage fills the terminal with a resize request.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

// bar wraps one line of chrome in the bordered bar style shared by the
// header and the footer.
func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderHeader renders the top bar: brand on the left, the screen title
// centered, the learner on the right.
func RenderHeader(title, learner string, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  Lernpath")

	center := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(title)

	right := ""
	if learner != "" {
		right = lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("@" + learner)
	}

	// The title is centered on the inner width; the gaps absorb the rest.
	inner := width - 4
	if inner < 0 {
		inner = 0
	}
	leftGap := (inner-lipgloss.Width(center))/2 - lipgloss.Width(left)
	if leftGap < 1 {
		leftGap = 1
	}
	rightGap := inner - lipgloss.Width(left) - leftGap - lipgloss.Width(center) - lipgloss.Width(right)
	if rightGap < 1 {
		rightGap = 1
	}

	return bar(left+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right, width)
}

// RenderFooter renders the bottom bar listing the given key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key)+" "+
				lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description))
	}
	return bar("  "+strings.Join(parts, "   "), width)
}

// RenderFrame stacks header, content and footer, stretching the content
// to fill the height between the bars.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	body := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		Render(content)

	return header + "\n" + body + "\n" + footer
}

package learn

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/ui/components"
	"github.com/abhisek/lernpath/internal/ui/theme"
)

func (s *LearnScreen) View(width, height int) string {
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}

	switch s.mode {
	case modeGoal:
		return s.renderGoalPrompt(width, height)
	case modeAssessment, modeTest:
		return s.renderQuestion(width, height)
	case modeResult:
		return s.renderResult(width, height)
	case modeDone:
		return s.renderDone(width, height)
	}

	// Chat, gap and working modes share the transcript layout.
	return s.renderConversation(width, height)
}

// renderGoalPrompt is the blank-slate entry view.
func (s *LearnScreen) renderGoalPrompt(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("What's your next goal?"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Describe it in your own words; the tutor shapes it into a path."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))

	if len(s.transcript) > 0 {
		// Error notes from a failed attempt show under the prompt.
		last := s.transcript[len(s.transcript)-1]
		if last.role == roleNote {
			b.WriteString("\n\n")
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.Error).
				Render(last.text))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Center, b.String())
}

// renderConversation is the main layout: progress header, transcript,
// input or status line.
func (s *LearnScreen) renderConversation(width, height int) string {
	header := s.renderProgress(width)

	var bottom string
	switch s.mode {
	case modeWorking:
		bottom = theme.Hint.Render("  " + s.working)
	default:
		bottom = "  " + s.input.View()
	}
	if s.saveNote != "" {
		bottom += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("  "+s.saveNote)
	}

	headerLines := lipgloss.Height(header)
	bottomLines := lipgloss.Height(bottom)
	avail := height - headerLines - bottomLines - 1
	if avail < 1 {
		avail = 1
	}

	transcript := s.renderTranscript(width, avail)

	return header + "\n" + transcript + "\n" + bottom
}

// renderProgress shows where the learner is on the path.
func (s *LearnScreen) renderProgress(width int) string {
	if s.state.Goal == nil {
		return ""
	}

	covered, total := pathProgress(s.state.Goal.Path)
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.state.Goal.Name)
	if current, ok := s.state.Current(); ok {
		left += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %s %s", theme.StatusGlyph(current.Status), current.Name))
	}

	pct := 0.0
	if total > 0 {
		pct = float64(covered) / float64(total)
	}
	bar := components.NewProgressBar(fmt.Sprintf("%d/%d", covered, total), pct, false, width/3).View()

	line := left
	gap := width - lipgloss.Width(left) - lipgloss.Width(bar) - 2
	if gap > 0 {
		line += strings.Repeat(" ", gap) + bar
	}

	rule := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-2, 0)))
	return line + "\n" + rule
}

// renderTranscript windows the wrapped transcript to the available lines,
// honoring the scroll offset from the bottom.
func (s *LearnScreen) renderTranscript(width, avail int) string {
	textWidth := width - 6
	if textWidth < 20 {
		textWidth = 20
	}

	var lines []string
	for _, e := range s.transcript {
		lines = append(lines, renderEntry(e, textWidth)...)
		lines = append(lines, "")
	}
	if len(lines) == 0 {
		return strings.Repeat("\n", avail-1)
	}
	lines = lines[:len(lines)-1] // drop the trailing spacer

	scroll := s.scroll
	maxScroll := len(lines) - avail
	if maxScroll < 0 {
		maxScroll = 0
	}
	if scroll > maxScroll {
		scroll = maxScroll
	}

	end := len(lines) - scroll
	start := end - avail
	if start < 0 {
		start = 0
	}
	window := lines[start:end]

	// Pad so the newest line stays anchored at the bottom.
	if pad := avail - len(window); pad > 0 {
		window = append(make([]string, pad), window...)
	}
	return strings.Join(window, "\n")
}

// renderEntry wraps one transcript entry into prefixed lines.
func renderEntry(e entry, textWidth int) []string {
	var label string
	var style lipgloss.Style
	switch e.role {
	case roleTutor:
		label = "Tutor"
		style = theme.Tutor
	case roleYou:
		label = "You"
		style = theme.Learner
	default:
		wrapped := lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim).Italic(true).Render(e.text)
		out := make([]string, 0, 4)
		for _, l := range strings.Split(wrapped, "\n") {
			out = append(out, "  "+l)
		}
		return out
	}

	wrapped := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Render(e.text)
	out := []string{"  " + style.Render(label)}
	for _, l := range strings.Split(wrapped, "\n") {
		out = append(out, "  "+l)
	}
	return out
}

// renderQuestion shows one assessment or test question with the answer line.
func (s *LearnScreen) renderQuestion(width, height int) string {
	header := s.renderProgress(width)

	kind := "Test"
	if s.mode == modeAssessment {
		kind = "Prior knowledge check"
	}

	var b strings.Builder
	if s.qIndex < len(s.state.Questions) {
		q := s.state.Questions[s.qIndex]
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true).
			Render(fmt.Sprintf("%s: question %d of %d", kind, s.qIndex+1, len(s.state.Questions))))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 76)).
			Foreground(theme.Text).
			Bold(true).
			Render(q.Prompt))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
	} else {
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("All answers are in."))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Press Enter to submit them."))
	}

	if s.saveNote != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.saveNote))
	}
	if note := s.lastNote(); note != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 76)).
			Foreground(theme.TextDim).
			Italic(true).
			Render(note))
	}

	card := lipgloss.Place(width, height-lipgloss.Height(header)-1, lipgloss.Center, lipgloss.Center, b.String())
	return header + "\n" + card
}

// renderResult shows the scored test.
func (s *LearnScreen) renderResult(width, height int) string {
	result := s.state.LastResult
	if result == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No result to show. Press any key."))
	}

	var b strings.Builder
	if result.Passed {
		b.WriteString(theme.Correct.Render(fmt.Sprintf("Passed with %d points", result.Score)))
	} else {
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("Not yet: %d points", result.Score)))
	}
	b.WriteString("\n\n")

	for i, q := range result.PerQuestion {
		mark := theme.Correct.Render("✓")
		if !q.Correct {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("%s  Question %d", mark, i+1))
		if !q.Correct && q.Explanation != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().
				Width(min(width-12, 70)).
				Foreground(theme.TextDim).
				Render("   " + q.Explanation))
		}
		b.WriteString("\n")
	}

	if result.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 76)).
			Foreground(theme.Text).
			Render(result.Feedback))
		b.WriteString("\n")
	}
	if result.Recommendation != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 76)).
			Foreground(theme.Accent).
			Render("Tip: " + result.Recommendation))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Press any key to continue."))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

// renderDone is the goal completion view.
func (s *LearnScreen) renderDone(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Goal complete!"))
	b.WriteString("\n\n")

	if goal := s.state.Goal; goal != nil {
		mastered, skipped := 0, 0
		for _, c := range goal.Path {
			switch c.Status {
			case path.StatusMastered:
				mastered++
			case path.StatusSkipped:
				skipped++
			}
		}
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Text).
			Render(fmt.Sprintf("%q is done: %d concept(s) mastered, %d already known.", goal.Name, mastered, skipped)))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Hint.Render("Press any key to head back."))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

// renderQuitConfirm is the pause dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Pause this session?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Progress is snapshotted after every step; you can resume any time."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, pause"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))
	return b.String()
}

// lastNote returns the trailing run of note entries, for surfacing errors
// and retry guidance in the question views.
func (s *LearnScreen) lastNote() string {
	var notes []string
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].role != roleNote {
			break
		}
		notes = append([]string{s.transcript[i].text}, notes...)
	}
	return strings.Join(notes, "\n")
}

// pathProgress counts concepts already covered, mastered or proven known.
func pathProgress(concepts []path.Concept) (covered, total int) {
	for _, c := range concepts {
		switch c.Status {
		case path.StatusMastered, path.StatusSkipped:
			covered++
		}
	}
	return covered, len(concepts)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

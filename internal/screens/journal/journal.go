package journal

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/router"
	"github.com/abhisek/lernpath/internal/screen"
	"github.com/abhisek/lernpath/internal/store"
	"github.com/abhisek/lernpath/internal/ui/layout"
	"github.com/abhisek/lernpath/internal/ui/theme"
)

// pageSize is how many journal entries one load fetches.
const pageSize = 100

type loadedMsg struct {
	Events []store.LearnEvent
	Err    error
}

// JournalScreen shows the learning journal, newest first: goals, material,
// chat, gaps, tests and their scores.
type JournalScreen struct {
	repo   store.EventRepo
	userID string

	events []store.LearnEvent
	scroll int
	loaded bool
	errMsg string
}

var _ screen.Screen = (*JournalScreen)(nil)
var _ screen.KeyHintProvider = (*JournalScreen)(nil)

// New creates the journal view for one learner.
func New(repo store.EventRepo, userID string) *JournalScreen {
	return &JournalScreen{
		repo:   repo,
		userID: userID,
	}
}

func (s *JournalScreen) Init() tea.Cmd {
	repo := s.repo
	userID := s.userID
	return func() tea.Msg {
		events, err := repo.QueryLearnEvents(context.Background(), store.QueryOpts{
			UserID: userID,
			Limit:  pageSize,
		})
		return loadedMsg{Events: events, Err: err}
	}
}

func (s *JournalScreen) Title() string {
	return "Journal"
}

func (s *JournalScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *JournalScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.scroll > 0 {
				s.scroll--
			}
			return s, nil
		case "down", "j":
			if s.scroll < len(s.events)-1 {
				s.scroll++
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *JournalScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nError: " + s.errMsg)
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading the journal...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing recorded yet. Every session writes here.")
	}

	rows := height - 2
	if rows < 1 {
		rows = 1
	}
	if s.scroll > len(s.events)-1 {
		s.scroll = len(s.events) - 1
	}
	end := s.scroll + rows
	if end > len(s.events) {
		end = len(s.events)
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, e := range s.events[s.scroll:end] {
		b.WriteString(renderEvent(e, width))
		b.WriteString("\n")
	}
	return b.String()
}

// renderEvent is one journal row: time, type glyph, and a trimmed text.
func renderEvent(e store.LearnEvent, width int) string {
	text := strings.ReplaceAll(e.Text, "\n", " ")
	line := fmt.Sprintf("  %s  %s %-12s  %s",
		e.Timestamp.Format("Jan 02 15:04"), eventGlyph(e.Type), eventLabel(e.Type), text)
	if e.Score != nil {
		line += fmt.Sprintf("  [%d]", *e.Score)
	}

	if maxw := width - 4; maxw > 20 {
		if r := []rune(line); len(r) > maxw {
			line = string(r[:maxw-3]) + "..."
		}
	}
	return eventStyle(e.Type).Render(line)
}

func eventGlyph(eventType string) string {
	switch eventType {
	case store.EventGoalCreated:
		return "◆"
	case store.EventGoalCompleted:
		return "★"
	case store.EventAssessmentIssued, store.EventTestIssued:
		return "?"
	case store.EventAssessmentScored, store.EventTestScored:
		return "✓"
	case store.EventMaterialShown:
		return "▤"
	case store.EventLearnerMessage:
		return "›"
	case store.EventTutorReply:
		return "‹"
	case store.EventGapReported:
		return "!"
	case store.EventRemediation:
		return "+"
	default:
		return "·"
	}
}

func eventLabel(eventType string) string {
	return strings.ReplaceAll(eventType, "_", " ")
}

func eventStyle(eventType string) lipgloss.Style {
	switch eventType {
	case store.EventGoalCreated, store.EventGoalCompleted:
		return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	case store.EventGapReported, store.EventRemediation:
		return lipgloss.NewStyle().Foreground(theme.Accent)
	case store.EventTestScored, store.EventAssessmentScored:
		return lipgloss.NewStyle().Foreground(theme.Secondary)
	default:
		return lipgloss.NewStyle().Foreground(theme.Text)
	}
}

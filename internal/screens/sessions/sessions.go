package sessions

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/engine"
	"github.com/abhisek/lernpath/internal/router"
	"github.com/abhisek/lernpath/internal/screen"
	"github.com/abhisek/lernpath/internal/screens/learn"
	"github.com/abhisek/lernpath/internal/store"
	"github.com/abhisek/lernpath/internal/ui/layout"
	"github.com/abhisek/lernpath/internal/ui/theme"
)

// SessionStore is the persistence slice the screen needs. A resumed learn
// screen keeps writing snapshots through the same value.
type SessionStore interface {
	ListSessions(ctx context.Context, userID string) ([]*store.SessionRecord, error)
	SaveSession(ctx context.Context, rec *store.SessionRecord) error
	DeleteSession(ctx context.Context, userID, goalID string) error
}

type loadedMsg struct {
	Records []*store.SessionRecord
	Err     error
}

type deletedMsg struct {
	Err error
}

// SessionsScreen lists paused sessions, newest first. Enter picks one up
// where it left off; d discards its snapshot.
type SessionsScreen struct {
	engine *engine.Engine
	store  SessionStore
	userID string

	records  []*store.SessionRecord
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*SessionsScreen)(nil)
var _ screen.KeyHintProvider = (*SessionsScreen)(nil)

// New creates the paused-sessions screen.
func New(eng *engine.Engine, st SessionStore, userID string) *SessionsScreen {
	return &SessionsScreen{
		engine: eng,
		store:  st,
		userID: userID,
	}
}

func (s *SessionsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *SessionsScreen) load() tea.Cmd {
	st := s.store
	userID := s.userID
	return func() tea.Msg {
		records, err := st.ListSessions(context.Background(), userID)
		return loadedMsg{Records: records, Err: err}
	}
}

func (s *SessionsScreen) Title() string {
	return "Paused Sessions"
}

func (s *SessionsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Resume"},
		{Key: "D", Description: "Discard"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SessionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Records
			s.errMsg = ""
		}
		s.loaded = true
		if s.selected >= len(s.records) {
			s.selected = len(s.records) - 1
		}
		if s.selected < 0 {
			s.selected = 0
		}
		return s, nil

	case deletedMsg:
		if msg.Err != nil {
			s.errMsg = "Could not discard: " + msg.Err.Error()
			return s, nil
		}
		return s, s.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s.resume()
		case "d", "D":
			return s.discard()
		}
	}
	return s, nil
}

// resume rebuilds the learn screen from the selected snapshot and swaps
// this list out for it, so Esc from the session leads back to the menu.
func (s *SessionsScreen) resume() (screen.Screen, tea.Cmd) {
	if s.selected >= len(s.records) {
		return s, nil
	}
	rec := s.records[s.selected]

	resumed, err := learn.Resume(s.engine, s.store, rec)
	if err != nil {
		s.errMsg = fmt.Sprintf("Could not resume %q: %v", rec.Name, err)
		return s, nil
	}
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: resumed}
	}
}

func (s *SessionsScreen) discard() (screen.Screen, tea.Cmd) {
	if s.selected >= len(s.records) {
		return s, nil
	}
	rec := s.records[s.selected]
	st := s.store
	return s, func() tea.Msg {
		return deletedMsg{Err: st.DeleteSession(context.Background(), rec.UserID, rec.GoalID)}
	}
}

func (s *SessionsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading paused sessions...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing paused. Start a goal from the menu!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  saved %s",
			prefix, rec.Name, phaseLabel(rec.Phase), rec.SavedAt.Format("Jan 02 15:04"))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}

// phaseLabel turns a machine phase name into readable words.
func phaseLabel(phase string) string {
	return strings.ReplaceAll(phase, "_", " ")
}

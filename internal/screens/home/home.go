package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/engine"
	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/router"
	"github.com/abhisek/lernpath/internal/screen"
	"github.com/abhisek/lernpath/internal/screens/journal"
	"github.com/abhisek/lernpath/internal/screens/learn"
	"github.com/abhisek/lernpath/internal/screens/pathmap"
	"github.com/abhisek/lernpath/internal/screens/sessions"
	"github.com/abhisek/lernpath/internal/store"
	"github.com/abhisek/lernpath/internal/ui/components"
	"github.com/abhisek/lernpath/internal/ui/theme"
)

// statsMsg carries the learner's standing, loaded off the UI goroutine.
type statsMsg struct {
	GoalsUnderway int
	Mastered      int
	Saved         int
	Err           error
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	store   *store.Store
	profile path.UserProfile

	menu  components.Menu
	stats *statsMsg
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen for a known learner.
func New(eng *engine.Engine, st *store.Store, profile path.UserProfile) *HomeScreen {
	items := []components.MenuItem{
		{Label: "START A GOAL", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: learn.New(eng, st, profile)}
			}
		}},
		{Label: "RESUME A SESSION", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessions.New(eng, st, profile.UserID)}
			}
		}},
		{Label: "PATH MAP", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: pathmap.New(st, profile.UserID)}
			}
		}},
		{Label: "JOURNAL", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: journal.New(st.EventRepo(), profile.UserID)}
			}
		}},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		store:   st,
		profile: profile,
		menu:    components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	st := h.store
	userID := h.profile.UserID
	return func() tea.Msg {
		ctx := context.Background()

		goals, err := st.ListGoals(ctx, userID)
		if err != nil {
			return statsMsg{Err: err}
		}
		var underway, mastered int
		for _, g := range goals {
			if g.Status == path.GoalInProgress {
				underway++
			}
			for _, c := range g.Path {
				if c.Status == path.StatusMastered {
					mastered++
				}
			}
		}

		saved, err := st.ListSessions(ctx, userID)
		if err != nil {
			return statsMsg{Err: err}
		}

		return statsMsg{GoalsUnderway: underway, Mastered: mastered, Saved: len(saved)}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if stats, ok := msg.(statsMsg); ok {
		h.stats = &stats
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Render("L E R N P A T H"))
	sections = append(sections, theme.Subtitle.Render("Set a goal, walk the path, close the gaps."))
	sections = append(sections, h.renderStats())
	sections = append(sections, h.menu.View())

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// renderStats is the one-line standing between the title and the menu.
func (h *HomeScreen) renderStats() string {
	if h.stats == nil {
		return theme.Hint.Render("Loading your progress...")
	}
	if h.stats.Err != nil {
		return lipgloss.NewStyle().Foreground(theme.Error).
			Render("Progress unavailable: " + h.stats.Err.Error())
	}

	parts := []string{
		fmt.Sprintf("%d goal(s) underway", h.stats.GoalsUnderway),
		fmt.Sprintf("%d concept(s) mastered", h.stats.Mastered),
	}
	if h.stats.Saved > 0 {
		parts = append(parts, fmt.Sprintf("%d paused session(s)", h.stats.Saved))
	}

	return lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(strings.Join(parts, "   ·   "))
}

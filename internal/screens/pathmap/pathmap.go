package pathmap

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/router"
	"github.com/abhisek/lernpath/internal/screen"
	"github.com/abhisek/lernpath/internal/ui/layout"
	"github.com/abhisek/lernpath/internal/ui/theme"
)

// GoalLister is the read slice of persistence the map needs.
type GoalLister interface {
	ListGoals(ctx context.Context, userID string) ([]*path.Goal, error)
}

type loadedMsg struct {
	Goals []*path.Goal
	Err   error
}

// PathMapScreen shows every goal with its concept path and the lifecycle
// status of each concept, remediation insertions included.
type PathMapScreen struct {
	store  GoalLister
	userID string

	goals    []*path.Goal
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*PathMapScreen)(nil)
var _ screen.KeyHintProvider = (*PathMapScreen)(nil)

// New creates the path map.
func New(st GoalLister, userID string) *PathMapScreen {
	return &PathMapScreen{
		store:    st,
		userID:   userID,
		expanded: make(map[int]bool),
	}
}

func (s *PathMapScreen) Init() tea.Cmd {
	st := s.store
	userID := s.userID
	return func() tea.Msg {
		goals, err := st.ListGoals(context.Background(), userID)
		return loadedMsg{Goals: goals, Err: err}
	}
}

func (s *PathMapScreen) Title() string {
	return "Path Map"
}

func (s *PathMapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Expand"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PathMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.goals = msg.Goals
			// A lone goal opens right away; there is nothing to pick.
			if len(s.goals) == 1 {
				s.expanded[0] = true
			}
		}
		s.loaded = true
		return s, nil

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
			if s.selected < len(s.goals)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *PathMapScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nError: " + s.errMsg)
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading your paths...")
	}
	if len(s.goals) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No goals yet. Start one from the menu!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, g := range s.goals {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderGoalLine(i, g)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, c := range g.Path {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderConceptLine(c)))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderLegend()))
	return b.String()
}

func (s *PathMapScreen) renderGoalLine(i int, g *path.Goal) string {
	covered := 0
	for _, c := range g.Path {
		if c.Status == path.StatusMastered || c.Status == path.StatusSkipped {
			covered++
		}
	}

	prefix := "  "
	if i == s.selected {
		prefix = "> "
	}
	status := "underway"
	if g.Status == path.GoalCompleted {
		status = "completed"
	}

	line := fmt.Sprintf("%s%s  %d/%d concepts  %s", prefix, g.Name, covered, len(g.Path), status)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.Render(line)
}

// renderConceptLine is one concept with its lifecycle glyph. Concepts that
// entered through remediation or left through the prior assessment carry
// their provenance.
func renderConceptLine(c path.Concept) string {
	line := fmt.Sprintf("    %s %s  (Bloom %d)", theme.StatusGlyph(c.Status), c.Name, c.RequiredBloomLevel)
	if c.ExpertiseSource != "" {
		line += "  via " + c.ExpertiseSource
	}
	return theme.StatusStyle(c.Status).Render(line)
}

func renderLegend() string {
	parts := make([]string, 0, 6)
	for _, st := range path.AllStatuses() {
		parts = append(parts, theme.StatusStyle(st).Render(theme.StatusGlyph(st)+" "+st.Label()))
	}
	return strings.Join(parts, "   ")
}

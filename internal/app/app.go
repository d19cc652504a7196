package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/engine"
	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/router"
	"github.com/abhisek/lernpath/internal/screen"
	"github.com/abhisek/lernpath/internal/screens/home"
	"github.com/abhisek/lernpath/internal/screens/welcome"
	"github.com/abhisek/lernpath/internal/store"
	"github.com/abhisek/lernpath/internal/ui/layout"
)

// Deps carries the collaborators the screens draw on.
type Deps struct {
	Engine *engine.Engine
	Store  *store.Store
	UserID string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	learner string
	width   int
	height  int
}

// newAppModel creates an AppModel whose initial screen depends on whether
// the learner already has a profile: first runs go through the welcome
// setup, everyone else lands on home.
func newAppModel(deps Deps) (AppModel, error) {
	profile, found, err := deps.Store.GetUserProfile(context.Background(), deps.UserID)
	if err != nil {
		return AppModel{}, fmt.Errorf("load profile: %w", err)
	}

	homeFor := func(p path.UserProfile) screen.Screen {
		return home.New(deps.Engine, deps.Store, p)
	}

	var initial screen.Screen
	if found {
		initial = homeFor(*profile)
	} else {
		initial = welcome.New(deps.Store, deps.UserID, homeFor)
	}

	return AppModel{
		router:  router.New(initial),
		learner: deps.UserID,
	}, nil
}

func (m AppModel) Init() tea.Cmd {
	active := m.router.Active()
	if active == nil {
		return nil
	}
	return active.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if ec, ok := m.router.Active().(screen.EscCapturer); ok && ec.CapturesEsc() {
				break // the screen owns Esc
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.learner, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(deps Deps) error {
	m, err := newAppModel(deps)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

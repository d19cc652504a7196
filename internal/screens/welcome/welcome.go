package welcome

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/router"
	"github.com/abhisek/lernpath/internal/screen"
	"github.com/abhisek/lernpath/internal/ui/layout"
	"github.com/abhisek/lernpath/internal/ui/theme"
)

// profileStore is the slice of persistence the setup needs.
type profileStore interface {
	SaveUserProfile(ctx context.Context, p *path.UserProfile) error
}

type savedMsg struct {
	Err error
}

// WelcomeScreen is the first-run setup: it collects the learner's
// preferences, saves the profile and hands over to the home screen.
type WelcomeScreen struct {
	store       profileStore
	profile     path.UserProfile
	homeFactory func(path.UserProfile) screen.Screen
	cursor      int
	saving      bool
	errMsg      string
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// settings rows, in cursor order
const (
	rowLanguage = iota
	rowAssessment
	rowCount
)

// New creates the setup screen for a learner without a stored profile.
func New(store profileStore, userID string, homeFactory func(path.UserProfile) screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		store: store,
		profile: path.UserProfile{
			UserID:   userID,
			Language: "en",
		},
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return "Welcome"
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return nil
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Setting"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Start learning"},
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		w.saving = false
		if msg.Err != nil {
			w.errMsg = msg.Err.Error()
			return w, nil
		}
		home := w.homeFactory(w.profile)
		return w, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: home}
		}

	case tea.KeyPressMsg:
		if w.saving {
			return w, nil
		}
		switch msg.String() {
		case "up", "k":
			if w.cursor > 0 {
				w.cursor--
			}
		case "down", "j":
			if w.cursor < rowCount-1 {
				w.cursor++
			}
		case "left", "right", "h", "l", "space":
			w.toggle()
		case "enter":
			w.saving = true
			w.errMsg = ""
			return w, w.save()
		}
	}

	return w, nil
}

func (w *WelcomeScreen) toggle() {
	switch w.cursor {
	case rowLanguage:
		if w.profile.Language == "en" {
			w.profile.Language = "de"
		} else {
			w.profile.Language = "en"
		}
	case rowAssessment:
		w.profile.AssessmentEnabled = !w.profile.AssessmentEnabled
	}
}

func (w *WelcomeScreen) save() tea.Cmd {
	profile := w.profile
	return func() tea.Msg {
		err := w.store.SaveUserProfile(context.Background(), &profile)
		return savedMsg{Err: err}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections,
		theme.Title.Width(width).Render("Welcome to Lernpath"))
	sections = append(sections,
		theme.Subtitle.Width(width).Render("A couple of choices before your first goal."))
	sections = append(sections, "")

	sections = append(sections, w.renderRow(rowLanguage, "Tutor language", languageLabel(w.profile.Language)))
	sections = append(sections, w.renderRow(rowAssessment, "Prior knowledge check", assessmentLabel(w.profile.AssessmentEnabled)))
	sections = append(sections, "")

	switch {
	case w.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Error).
			Render("Could not save: "+w.errMsg))
	case w.saving:
		sections = append(sections, theme.Hint.Render("Saving..."))
	default:
		sections = append(sections, theme.Hint.Render("Press Enter when you are ready."))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (w *WelcomeScreen) renderRow(row int, label, value string) string {
	prefix := "   "
	style := theme.Unselected
	if row == w.cursor {
		prefix = " ▸ "
		style = theme.Selected
	}
	return style.Render(prefix+label+":  ") +
		lipgloss.NewStyle().Foreground(theme.Secondary).Render("‹ "+value+" ›")
}

func languageLabel(code string) string {
	if code == "de" {
		return "Deutsch"
	}
	return "English"
}

func assessmentLabel(enabled bool) string {
	if enabled {
		return "before every new goal"
	}
	return "skip it"
}

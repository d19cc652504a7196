package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lernpath/internal/ui/layout"
)

// Screen is one full view in the app: the home menu, a learning
// session, the path map. The router stacks them.
type Screen interface {
	// Init runs when the screen becomes active for the first time.
	Init() tea.Cmd

	// Update reacts to a message and returns the screen to keep showing.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body; the app shell draws header and footer.
	View(width, height int) string

	// Title is shown in the header bar.
	Title() string
}

// KeyHintProvider lets a screen put its own key hints in the footer.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscCapturer is an optional interface for screens that handle Esc
// themselves, e.g. to confirm before leaving. Without it, Esc pops the
// screen stack.
type EscCapturer interface {
	CapturesEsc() bool
}

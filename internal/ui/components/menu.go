package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lernpath/internal/ui/theme"
)

// MenuItem is one selectable row; Action produces the command to run
// when the row is chosen.
type MenuItem struct {
	Label  string
	Action func() tea.Cmd
}

// Menu is the vertical selection list on the home screen.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a menu with the first item selected.
func NewMenu(items []MenuItem) Menu {
	return Menu{Items: items}
}

// Update moves the selection or fires the selected action.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Items)-1 {
			m.Selected++
		}
	case "enter":
		if m.Selected < len(m.Items) && m.Items[m.Selected].Action != nil {
			return m, m.Items[m.Selected].Action()
		}
	}
	return m, nil
}

// View renders the rows, marking the selected one.
func (m Menu) View() string {
	var b []byte
	for i, item := range m.Items {
		if i == m.Selected {
			b = append(b, theme.Selected.Render("  ▸ "+item.Label)...)
		} else {
			b = append(b, theme.Unselected.Render("    "+item.Label)...)
		}
		b = append(b, '\n')
	}
	return string(b)
}

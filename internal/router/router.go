// Package router keeps the stack of screens the learner navigates:
// home at the bottom, then whatever they drill into on top. Screens
// never hold references to each other; they emit navigation messages
// and the router rearranges the stack.
package router

import (
	"github.com/abhisek/lernpath/internal/screen"

	tea "charm.land/bubbletea/v2"
)

// PushScreenMsg opens a screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the current screen and returns to the one below.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the current screen out without growing the
// stack. First-run setup uses this to become the home screen, and the
// session list uses it to turn into the resumed learning screen.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// Router owns the screen stack. The bottom screen can never be popped.
type Router struct {
	stack []screen.Screen
}

// New creates a router rooted at the given screen.
func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

// Push puts a screen on top and runs its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop drops the top screen, unless it is the root.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	return nil
}

// Replace swaps the top screen for another and runs its Init command.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(s)
	}
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// Active returns the screen currently shown, or nil on an empty stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth reports how many screens are stacked.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update routes navigation messages to the stack and everything else to
// the active screen, storing back whatever screen value Update returned.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	active := r.Active()
	if active == nil {
		return nil
	}
	next, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

// View renders the active screen at the given size.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}

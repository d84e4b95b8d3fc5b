// Package router keeps the stack of TUI screens.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg returns to the previous screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the active screen for Screen, keeping the depth.
// Used when a flow moves on, e.g. from answering a test to its results.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// PopToRootMsg closes every screen above the first.
type PopToRootMsg struct{}

// Router is a stack of screens. Only the top one receives messages. The
// root screen is never removed.
type Router struct {
	stack []screen.Screen
}

// New creates a router showing root.
func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

// leave closes the screen at index i if it owns background work.
func (r *Router) leave(i int) {
	if c, ok := r.stack[i].(screen.Closer); ok {
		c.Close()
	}
	r.stack[i] = nil
}

// Push opens s and runs its Init.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the active screen unless it is the root.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.leave(r.top())
	r.stack = r.stack[:r.top()]
	return nil
}

// PopToRoot closes everything above the root screen.
func (r *Router) PopToRoot() tea.Cmd {
	for len(r.stack) > 1 {
		r.Pop()
	}
	return nil
}

// Replace closes the active screen and puts s in its place.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(s)
	}
	r.leave(r.top())
	r.stack[r.top()] = s
	return s.Init()
}

// Active returns the screen on top of the stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[r.top()]
}

// Depth returns the number of open screens.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopToRootMsg:
		return r.PopToRoot()
	}

	if len(r.stack) == 0 {
		return nil
	}
	next, cmd := r.stack[r.top()].Update(msg)
	r.stack[r.top()] = next
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if s := r.Active(); s != nil {
		return s.View(width, height)
	}
	return ""
}

// Package screen defines what the router needs from a TUI screen.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/ui/layout"
)

// Screen is one page of the TUI. View renders only the area between the
// header and the footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// ScopeProvider is implemented by screens tied to a board, class and
// subject. The scope is shown on the right of the header.
type ScopeProvider interface {
	Scope() string
}

// Closer is implemented by screens that start LLM calls in the background.
// Close is called once the screen leaves the stack and must cancel them.
type Closer interface {
	Close()
}

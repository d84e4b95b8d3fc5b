package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/ui/theme"
)

// Button runs OnPress on enter or space while focused.
type Button struct {
	Label   string
	Focused bool
	OnPress func() tea.Cmd
}

// NewButton creates a button.
func NewButton(label string, focused bool, onPress func() tea.Cmd) Button {
	return Button{Label: label, Focused: focused, OnPress: onPress}
}

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !b.Focused || b.OnPress == nil {
		return b, nil
	}
	switch kmsg.String() {
	case "enter", "space":
		return b, b.OnPress()
	}
	return b, nil
}

// View renders the button.
func (b Button) View() string {
	if b.Focused {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}

package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput for free-text answers.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput creates a focused text input. maxLen 0 means unlimited.
func NewTextInput(placeholder string, maxLen int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxLen > 0 {
		ti.CharLimit = maxLen
	}

	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the trimmed input value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetValue replaces the input's contents.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// SetWidth sets the visible width of the input.
func (t *TextInput) SetWidth(w int) {
	t.Model.SetWidth(w)
}

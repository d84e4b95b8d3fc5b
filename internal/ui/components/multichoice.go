package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/ui/theme"
)

// MultiChoice picks one of a question's options. It only records the pick;
// the grader decides whether it is right after the whole test is submitted.
type MultiChoice struct {
	Question string
	Options  []string
	Cursor   int

	// chosen is the index of the picked option, -1 until one is picked.
	chosen int
}

// NewMultiChoice creates a selector with nothing picked.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{Question: question, Options: options, chosen: -1}
}

// Submitted reports whether an option has been picked.
func (m MultiChoice) Submitted() bool {
	return m.chosen >= 0
}

// Chosen returns the picked option, or "" when none is.
func (m MultiChoice) Chosen() string {
	if !m.Submitted() || m.chosen >= len(m.Options) {
		return ""
	}
	return m.Options[m.chosen]
}

// Select moves the cursor to the option equal to value, if any. It is used
// to show a previous answer when the learner goes back.
func (m *MultiChoice) Select(value string) {
	for i, opt := range m.Options {
		if opt == value {
			m.Cursor = i
			return
		}
	}
}

// Update moves the cursor with the arrow keys and picks an option on enter
// or on its letter.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || m.Submitted() || len(m.Options) == 0 {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		m.Cursor = max(m.Cursor-1, 0)
	case "down", "j":
		m.Cursor = min(m.Cursor+1, len(m.Options)-1)
	case "enter":
		m.chosen = m.Cursor
	default:
		if i := optionIndex(key); i >= 0 && i < len(m.Options) {
			m.Cursor, m.chosen = i, i
		}
	}
	return m, nil
}

// optionIndex maps "a".."z" to 0..25 and anything else to -1.
func optionIndex(key string) int {
	if len(key) != 1 || key[0] < 'a' || key[0] > 'z' {
		return -1
	}
	return int(key[0] - 'a')
}

// View renders the question followed by the lettered options.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		line := string(rune('A'+i)) + ")  " + opt
		switch {
		case m.Submitted() && i == m.chosen:
			line = theme.Heading.UnsetUnderline().Render("✓ " + line)
		case m.Submitted():
			line = theme.Dim.Render("  " + line)
		case i == m.Cursor:
			line = theme.Selected.Render("▸ " + line)
		default:
			line = theme.Body.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

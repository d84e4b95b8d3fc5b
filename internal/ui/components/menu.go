package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Disabled items are shown but skipped.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. Items are numbered; pressing a number
// runs that item directly.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.next(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// next returns the first enabled index after from in direction dir, or -1.
func (m Menu) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

func (m Menu) run(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if i := m.next(m.Selected, -1); i >= 0 {
			m.Selected = i
		}
	case "down", "j":
		if i := m.next(m.Selected, 1); i >= 0 {
			m.Selected = i
		}
	case "home", "g":
		if i := m.next(-1, 1); i >= 0 {
			m.Selected = i
		}
	case "end", "G":
		if i := m.next(len(m.Items), -1); i >= 0 {
			m.Selected = i
		}
	case "enter":
		return m, m.run(m.Selected)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Items) && !m.Items[i].Disabled {
				m.Selected = i
				return m, m.run(i)
			}
		}
	}
	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		label := item.Label
		if i < 9 {
			label = fmt.Sprintf("%d  %s", i+1, item.Label)
		}
		switch {
		case item.Disabled:
			b.WriteString(theme.Dim.Render("    " + label))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + label))
		default:
			b.WriteString(theme.Body.Render("    " + label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Package picker walks the topic catalogue one level per screen:
// board, class, subject and finally topic.
package picker

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/catalog"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/screens/topic"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/ui/layout"
	"github.com/abhisek/eduai/internal/ui/theme"
)

// Level is the catalogue level a picker lists.
type Level int

const (
	LevelBoard Level = iota
	LevelClass
	LevelSubject
	LevelTopic
)

func (l Level) String() string {
	switch l {
	case LevelBoard:
		return "Board"
	case LevelClass:
		return "Class"
	case LevelSubject:
		return "Subject"
	default:
		return "Topic"
	}
}

type choice struct {
	value string // stored in the scope
	label string
	note  string
}

// PickerScreen lists the choices at one catalogue level.
type PickerScreen struct {
	svc      *service.Service
	cat      *catalog.Catalog
	scope    store.Scope
	level    Level
	choices  []choice
	selected int
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)
var _ screen.ScopeProvider = (*PickerScreen)(nil)

// New creates a picker for the first unset level of scope.
func New(svc *service.Service, cat *catalog.Catalog, scope store.Scope) *PickerScreen {
	p := &PickerScreen{svc: svc, cat: cat, scope: scope}
	switch {
	case scope.Board == "":
		p.level = LevelBoard
		for _, b := range cat.Boards() {
			p.choices = append(p.choices, choice{value: b.Name, label: b.DisplayName()})
		}
	case scope.ClassName == "":
		p.level = LevelClass
		for _, c := range cat.Classes(scope.Board) {
			p.choices = append(p.choices, choice{value: c.Name, label: c.Name,
				note: plural(len(c.Subjects), "subject")})
		}
	case scope.Subject == "":
		p.level = LevelSubject
		for _, s := range cat.Subjects(scope.Board, scope.ClassName) {
			note := plural(len(s.Topics), "topic")
			if len(s.Topics) == 0 {
				note = "no topics yet"
			}
			p.choices = append(p.choices, choice{value: s.Name, label: s.Name, note: note})
		}
	default:
		p.level = LevelTopic
		for _, t := range cat.Topics(scope.Board, scope.ClassName, scope.Subject) {
			p.choices = append(p.choices, choice{value: t.Name, label: t.Name, note: t.Description})
		}
	}
	return p
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Level returns the catalogue level this picker lists.
func (p *PickerScreen) Level() Level { return p.level }

func (p *PickerScreen) Init() tea.Cmd {
	return nil
}

func (p *PickerScreen) Title() string {
	return "Choose " + p.level.String()
}

func (p *PickerScreen) Scope() string {
	return layout.Scope(p.scope.Board, p.scope.ClassName, p.scope.Subject)
}

func (p *PickerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if p.selected > 0 {
			p.selected--
		}
	case "down", "j":
		if p.selected < len(p.choices)-1 {
			p.selected++
		}
	case "enter":
		if len(p.choices) == 0 {
			return p, nil
		}
		next := p.next(p.choices[p.selected].value)
		return p, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
	return p, nil
}

// next builds the screen that follows choosing value.
func (p *PickerScreen) next(value string) screen.Screen {
	scope := p.scope
	switch p.level {
	case LevelBoard:
		scope.Board = value
	case LevelClass:
		scope.ClassName = value
	case LevelSubject:
		scope.Subject = value
	case LevelTopic:
		scope.Topic = value
		t, _ := p.cat.Topic(scope.Board, scope.ClassName, scope.Subject, value)
		return topic.New(p.svc, scope, t.Description)
	}
	return New(p.svc, p.cat, scope)
}

func (p *PickerScreen) View(width, height int) string {
	if len(p.choices) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render(fmt.Sprintf("\n\n  No %ss in the catalogue yet.", strings.ToLower(p.level.String())))
	}

	var b strings.Builder
	b.WriteString("\n")

	// Each choice takes one line, plus one for its note.
	rows := max(1, (height-2)/2)
	start, end := layout.Window(p.selected, len(p.choices), rows)
	for i := start; i < end; i++ {
		c := p.choices[i]
		prefix := "    "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == p.selected {
			prefix = "  ▸ "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(prefix + c.label))
		b.WriteString("\n")
		if c.note != "" {
			note := c.note
			if r := []rune(note); width > 10 && len(r) > width-8 {
				note = string(r[:width-9]) + "…"
			}
			b.WriteString(theme.Hint.Render("      " + note))
		}
		b.WriteString("\n")
	}
	return b.String()
}

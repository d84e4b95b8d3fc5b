// Package topic is the action menu shown once a topic is chosen.
package topic

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/screens/history"
	"github.com/abhisek/eduai/internal/screens/practice"
	"github.com/abhisek/eduai/internal/screens/study"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/ui/components"
	"github.com/abhisek/eduai/internal/ui/layout"
	"github.com/abhisek/eduai/internal/ui/theme"
)

// TopicScreen offers study material, a practice test or the topic's history.
type TopicScreen struct {
	scope       store.Scope
	description string
	menu        components.Menu
}

var _ screen.Screen = (*TopicScreen)(nil)
var _ screen.ScopeProvider = (*TopicScreen)(nil)

// New creates the action menu for scope.Topic. Actions that need the
// service are disabled when svc is nil.
func New(svc *service.Service, scope store.Scope, description string) *TopicScreen {
	push := func(mk func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: mk()} }
		}
	}
	items := []components.MenuItem{
		{Label: "Study Material", Disabled: svc == nil,
			Action: push(func() screen.Screen { return study.New(svc, scope) })},
		{Label: "Practice Test", Disabled: svc == nil,
			Action: push(func() screen.Screen { return practice.New(svc, scope) })},
		{Label: "History", Disabled: svc == nil,
			Action: push(func() screen.Screen { return history.New(svc, scope) })},
	}
	return &TopicScreen{
		scope:       scope,
		description: description,
		menu:        components.NewMenu(items),
	}
}

func (s *TopicScreen) Init() tea.Cmd {
	return nil
}

func (s *TopicScreen) Title() string {
	return "Topic"
}

func (s *TopicScreen) Scope() string {
	return layout.Scope(s.scope.Board, s.scope.ClassName, s.scope.Subject)
}

func (s *TopicScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *TopicScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(s.scope.Topic))
	b.WriteString("\n")
	if s.description != "" {
		b.WriteString(theme.Subtitle.Width(width).Padding(0, 4).Render(s.description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))
	return b.String()
}

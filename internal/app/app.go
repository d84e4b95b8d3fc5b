// Package app runs the terminal UI.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/catalog"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/screens/home"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/ui/layout"
)

// Options holds the dependencies of the TUI.
type Options struct {
	// Service is nil when no LLM provider is configured.
	Service *service.Service
	Catalog *catalog.Catalog

	// Model is the model id shown on the home screen.
	Model string
}

var (
	quitHint = layout.KeyHint{Key: "Ctrl+C", Description: "Quit"}
	backHint = layout.KeyHint{Key: "Esc", Description: "Back"}
)

// model is the root Bubble Tea model. It owns the screen stack and draws
// the header and footer around the active screen.
type model struct {
	router        *router.Router
	width, height int
}

func newModel(opts Options) model {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	return model{router: router.New(home.New(opts.Service, cat, opts.Model))}
}

func (m model) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.PopToRoot()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() == 1 {
				return m, nil
			}
			return m, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return m, m.router.Update(msg)
}

// hints returns the footer for the active screen. Screens without their
// own hints get back navigation when they are not the root.
func (m model) hints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		return append(hp.KeyHints(), quitHint)
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{backHint, quitHint}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		quitHint,
	}
}

func (m model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the frame, or the resize notice on small terminals.
func (m model) render() string {
	switch {
	case m.width == 0 || m.height == 0:
		return ""
	case layout.IsTooSmall(m.width, m.height):
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var scope string
	if sp, ok := active.(screen.ScopeProvider); ok {
		scope = sp.Scope()
	}
	header := layout.RenderHeader(active.Title(), scope, m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)

	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := m.router.View(m.width, bodyHeight)
	return layout.RenderFrame(header, body, footer, m.width, m.height)
}

// Run shows the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newModel(opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

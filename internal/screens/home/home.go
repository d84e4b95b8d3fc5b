package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/catalog"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/screens/history"
	"github.com/abhisek/eduai/internal/screens/picker"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/ui/components"
	"github.com/abhisek/eduai/internal/ui/theme"
)

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	menu  components.Menu
	model string
	ready bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. svc is nil when no LLM provider is
// configured; topics can then be browsed but nothing can be generated.
func New(svc *service.Service, cat *catalog.Catalog, model string) *HomeScreen {
	items := []components.MenuItem{
		{Label: "BROWSE TOPICS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: picker.New(svc, cat, store.Scope{})}
			}
		}},
		{Label: "HISTORY", Disabled: svc == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(svc, store.Scope{})}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		menu:  components.NewMenu(items),
		model: model,
		ready: svc != nil,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 22 || width < 100
	cw := contentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Render(theme.Subtitle.Render("Study material and practice tests for your syllabus")),
	}
	if h.ready {
		sections = append(sections, renderModelNote(h.model, cw))
	} else {
		sections = append(sections, renderLLMBanner(cw))
	}
	sections = append(sections, renderMenu(h.menu, cw))

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

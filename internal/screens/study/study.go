// Package study generates and shows study material for a topic.
package study

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/ui/components"
	"github.com/abhisek/eduai/internal/ui/layout"
	"github.com/abhisek/eduai/internal/ui/theme"
	"github.com/abhisek/eduai/internal/workflow"
)

// sectionDoneMsg reports one finished section while generating.
type sectionDoneMsg struct {
	Section quiz.Section
	Index   int
	Total   int
}

// materialReadyMsg ends generation.
type materialReadyMsg struct {
	Outcome *service.StudyOutcome
	Err     error
}

// StudyScreen generates study material, then shows one section at a time.
type StudyScreen struct {
	svc   *service.Service
	scope store.Scope

	events  chan tea.Msg
	cancel  context.CancelFunc
	spinner spinner.Model
	done    map[quiz.Section]bool

	material *quiz.StudyMaterial
	section  int
	view     viewport.Model
	errMsg   string
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)
var _ screen.ScopeProvider = (*StudyScreen)(nil)
var _ screen.Closer = (*StudyScreen)(nil)

// New creates a screen that generates material for scope.Topic on Init.
func New(svc *service.Service, scope store.Scope) *StudyScreen {
	return &StudyScreen{
		svc:     svc,
		scope:   scope,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent))),
		done:    make(map[quiz.Section]bool),
		view:    viewport.New(),
	}
}

// NewViewer shows material that was generated earlier.
func NewViewer(scope store.Scope, m *quiz.StudyMaterial) *StudyScreen {
	s := New(nil, scope)
	s.material = m
	return s
}

func (s *StudyScreen) Init() tea.Cmd {
	if s.material != nil {
		s.refresh()
		return nil
	}
	return tea.Batch(s.spinner.Tick, s.generate())
}

// generate starts the workflow in the background and returns a command
// that delivers its first event.
func (s *StudyScreen) generate() tea.Cmd {
	s.events = make(chan tea.Msg, len(quiz.Sections)+1)
	req := quiz.StudyRequest{
		Board:     s.scope.Board,
		Theme:     s.scope.Topic,
		ClassName: s.scope.ClassName,
		Subject:   s.scope.Subject,
		Counts:    quiz.DefaultStudyCounts(),
	}
	events := s.events
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		ctx := workflow.WithStepFunc(ctx, func(sec quiz.Section, i, total int) {
			events <- sectionDoneMsg{Section: sec, Index: i, Total: total}
		})
		out, err := s.svc.GenerateStudy(ctx, req, nil)
		events <- materialReadyMsg{Outcome: out, Err: err}
		close(events)
	}()
	return s.wait()
}

func (s *StudyScreen) wait() tea.Cmd {
	events := s.events
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// Close stops a generation that is still running.
func (s *StudyScreen) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *StudyScreen) Title() string {
	return "Study Material"
}

func (s *StudyScreen) Scope() string {
	return layout.Scope(s.scope.Board, s.scope.ClassName, s.scope.Subject)
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	if s.material == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next section"},
		{Key: "Shift+Tab", Description: "Previous"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sectionDoneMsg:
		s.done[msg.Section] = true
		return s, s.wait()

	case materialReadyMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.material = msg.Outcome.Material
		s.refresh()
		return s, nil

	case spinner.TickMsg:
		if s.material != nil || s.errMsg != "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.material == nil {
			return s, nil
		}
		switch msg.String() {
		case "tab":
			s.section = (s.section + 1) % len(quiz.Sections)
			s.refresh()
			return s, nil
		case "shift+tab":
			s.section = (s.section + len(quiz.Sections) - 1) % len(quiz.Sections)
			s.refresh()
			return s, nil
		}
		var cmd tea.Cmd
		s.view, cmd = s.view.Update(msg)
		return s, cmd
	}
	return s, nil
}

// Section returns the section currently shown.
func (s *StudyScreen) Section() quiz.Section {
	return quiz.Sections[s.section]
}

func (s *StudyScreen) refresh() {
	text := s.material.Get(s.Section())
	if strings.TrimSpace(text) == "" {
		text = theme.Hint.Render("(empty)")
	}
	s.view.SetContent(text)
	s.view.GotoTop()
}

func (s *StudyScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if s.material == nil {
		return s.progressView(width)
	}

	tabs := s.tabs(width)
	s.view.SetWidth(width - 4)
	s.view.SetHeight(max(1, height-lipgloss.Height(tabs)-2))
	return "\n" + tabs + "\n\n" + lipgloss.NewStyle().Padding(0, 2).Render(s.view.View())
}

func (s *StudyScreen) progressView(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(s.scope.Topic))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Generating", len(s.done), len(quiz.Sections), true, min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	for _, sec := range quiz.Sections {
		line := "    " + s.spinner.View() + " " + sec.Title()
		style := theme.Dim
		if s.done[sec] {
			line = "    ✓ " + sec.Title()
			style = lipgloss.NewStyle().Foreground(theme.Success)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *StudyScreen) tabs(width int) string {
	parts := make([]string, 0, len(quiz.Sections))
	for i, sec := range quiz.Sections {
		if i == s.section {
			parts = append(parts, theme.Selected.Render("["+sec.Title()+"]"))
		} else {
			parts = append(parts, theme.Dim.Render(sec.Title()))
		}
	}
	return lipgloss.NewStyle().Width(width).Padding(0, 2).Render(strings.Join(parts, "  "))
}

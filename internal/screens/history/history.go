package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/grading"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/screens/practice"
	"github.com/abhisek/eduai/internal/screens/results"
	"github.com/abhisek/eduai/internal/screens/study"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/ui/layout"
	"github.com/abhisek/eduai/internal/ui/theme"
)

// Kinds lists the history tabs in display order.
var Kinds = []service.HistoryKind{
	service.HistoryMaterials,
	service.HistoryTests,
	service.HistorySubmissions,
	service.HistoryUploads,
}

const pageSize = 50

// row is one history entry ready for display.
type row struct {
	scope store.Scope
	when  string
	info  string
	open  func() tea.Msg // nil when the entry cannot be opened
}

type historyLoadedMsg struct {
	Kind service.HistoryKind
	Rows []row
	Err  error
}

type openFailedMsg struct {
	Err error
}

// HistoryScreen lists stored materials, tests, submissions and uploads.
type HistoryScreen struct {
	svc      *service.Service
	scope    store.Scope
	kind     int
	rows     []row
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.ScopeProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen filtered to scope. An empty scope lists
// everything.
func New(svc *service.Service, scope store.Scope) *HistoryScreen {
	return &HistoryScreen{svc: svc, scope: scope}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	s.loaded = false
	s.errMsg = ""
	kind := Kinds[s.kind]
	svc, scope := s.svc, s.scope
	return func() tea.Msg {
		rows, err := loadRows(context.Background(), svc, kind, scope)
		return historyLoadedMsg{Kind: kind, Rows: rows, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) Scope() string {
	return layout.Scope(s.scope.Board, s.scope.ClassName, s.scope.Subject, s.scope.Topic)
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch list"},
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

// Kind returns the list currently shown.
func (s *HistoryScreen) Kind() service.HistoryKind {
	return Kinds[s.kind]
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Kind != s.Kind() {
			return s, nil
		}
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.rows = msg.Rows
		}
		s.selected = 0
		s.loaded = true
		return s, nil

	case openFailedMsg:
		s.errMsg = msg.Err.Error()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			s.kind = (s.kind + 1) % len(Kinds)
			return s, s.load()
		case "shift+tab":
			s.kind = (s.kind + len(Kinds) - 1) % len(Kinds)
			return s, s.load()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.rows)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected < len(s.rows) && s.rows[s.selected].open != nil {
				return s, s.rows[s.selected].open
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.tabs(width))
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("Error: %s", s.errMsg)))
		return b.String()
	case !s.loaded:
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("Loading history..."))
		return b.String()
	case len(s.rows) == 0:
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("Nothing here yet."))
		return b.String()
	}

	start, end := layout.Window(s.selected, len(s.rows), max(1, height-4))
	for i := start; i < end; i++ {
		r := s.rows[i]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		where := r.scope.Topic
		if s.scope.Topic != "" {
			where = ""
		} else if where == "" {
			where = layout.Scope(r.scope.ClassName, r.scope.Subject)
		}
		line := fmt.Sprintf("%s%s  %s", prefix, r.when, r.info)
		if where != "" {
			line += "  " + where
		}
		if w := width - 4; w > 1 && lipgloss.Width(line) > w {
			runes := []rune(line)
			if len(runes) > w-1 {
				line = string(runes[:w-1]) + "…"
			}
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString("  " + style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) tabs(width int) string {
	parts := make([]string, 0, len(Kinds))
	for i, k := range Kinds {
		label := strings.ToUpper(string(k[:1])) + string(k[1:])
		style := theme.Tab
		if i == s.kind {
			style = theme.TabActive
		}
		parts = append(parts, style.Render(label))
	}
	return lipgloss.NewStyle().Width(width).Padding(0, 2).Render(strings.Join(parts, " "))
}

const timeLayout = "Jan 02, 2006 15:04"

func loadRows(ctx context.Context, svc *service.Service, kind service.HistoryKind, scope store.Scope) ([]row, error) {
	list, err := svc.History(ctx, kind, store.ListOpts{Scope: scope, Limit: pageSize})
	if err != nil {
		return nil, err
	}

	var rows []row
	switch list := list.(type) {
	case []store.Material:
		for _, m := range list {
			rows = append(rows, row{
				scope: m.Scope,
				when:  m.CreatedAt.Local().Format(timeLayout),
				info:  "study material",
				open:  openMaterial(m),
			})
		}
	case []store.Test:
		for _, t := range list {
			info := "test"
			if !t.Structured {
				info = "test (unparsed)"
			}
			rows = append(rows, row{
				scope: t.Scope,
				when:  t.CreatedAt.Local().Format(timeLayout),
				info:  info,
				open:  openTest(svc, t),
			})
		}
	case []store.Submission:
		for _, sub := range list {
			rows = append(rows, row{
				scope: sub.Scope,
				when:  sub.CreatedAt.Local().Format(timeLayout),
				info:  submissionInfo(sub),
				open:  openSubmission(svc, sub),
			})
		}
	case []store.Upload:
		for _, u := range list {
			rows = append(rows, row{
				scope: u.Scope,
				when:  u.CreatedAt.Local().Format(timeLayout),
				info:  fmt.Sprintf("%s (%d bytes)", u.FileName, u.Size),
			})
		}
	}
	return rows, nil
}

func openMaterial(m store.Material) func() tea.Msg {
	return func() tea.Msg {
		material := quiz.NewStudyMaterial()
		if err := json.Unmarshal(m.Outputs, material); err != nil {
			return openFailedMsg{Err: fmt.Errorf("decode material %s: %w", m.ID, err)}
		}
		return router.PushScreenMsg{Screen: study.NewViewer(m.Scope, material)}
	}
}

func openTest(svc *service.Service, t store.Test) func() tea.Msg {
	return func() tea.Msg {
		out, err := svc.LoadTest(context.Background(), t.ID)
		if err != nil {
			return openFailedMsg{Err: err}
		}
		return router.PushScreenMsg{Screen: practice.Resume(svc, t.Scope, out)}
	}
}

func openSubmission(svc *service.Service, sub store.Submission) func() tea.Msg {
	return func() tea.Msg {
		ev, answers, err := decodeSubmission(sub)
		if err != nil {
			return openFailedMsg{Err: err}
		}
		var bank *quiz.QuestionBank
		if sub.TestID != "" {
			if t, err := svc.LoadTest(context.Background(), sub.TestID); err == nil {
				bank = t.Bank
			}
		}
		return router.PushScreenMsg{Screen: results.New(sub.Scope, bank, answers, ev)}
	}
}

func decodeSubmission(sub store.Submission) (*grading.Evaluation, quiz.AnswerMap, error) {
	var answers quiz.AnswerMap
	if err := json.Unmarshal(sub.Answers, &answers); err != nil {
		return nil, nil, fmt.Errorf("decode answers of submission %s: %w", sub.ID, err)
	}
	ev := &grading.Evaluation{}
	if sub.Structured {
		if err := json.Unmarshal(sub.Corrections, &ev.Corrections); err != nil {
			return nil, nil, fmt.Errorf("decode corrections of submission %s: %w", sub.ID, err)
		}
		if ev.Corrections == nil {
			ev.Corrections = quiz.CorrectionMap{}
		}
		return ev, answers, nil
	}
	var fb map[string]string
	if err := json.Unmarshal(sub.Corrections, &fb); err == nil {
		ev.Raw = fb[quiz.RawFeedbackKey]
	}
	return ev, answers, nil
}

func submissionInfo(sub store.Submission) string {
	ev, answers, err := decodeSubmission(sub)
	if err != nil {
		return "submission"
	}
	if !ev.Structured() {
		return fmt.Sprintf("submission, %d answers, feedback only", len(answers))
	}
	sum := ev.Summary()
	return fmt.Sprintf("submission, %d/%d correct", sum.Correct, sum.Graded)
}

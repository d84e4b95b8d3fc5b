// Package practice generates a test for a topic, collects the learner's
// answers and submits them for grading.
package practice

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/screens/results"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/ui/components"
	"github.com/abhisek/eduai/internal/ui/layout"
	"github.com/abhisek/eduai/internal/ui/theme"
)

type testReadyMsg struct {
	Outcome *service.TestOutcome
	Err     error
}

type gradedMsg struct {
	Outcome *service.GradeOutcome
	Err     error
}

type phase int

const (
	phaseGenerating phase = iota
	phaseRaw
	phaseAnswering
	phaseReview
	phaseGrading
)

// PracticeScreen walks through every question of a generated test.
type PracticeScreen struct {
	svc   *service.Service
	scope store.Scope

	ctx    context.Context
	cancel context.CancelFunc

	phase   phase
	spinner spinner.Model
	errMsg  string

	test    *service.TestOutcome
	keys    []quiz.AnswerKey
	current int
	answers quiz.AnswerMap

	choice components.MultiChoice
	input  components.TextInput
	submit components.Button
	raw    viewport.Model
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.ScopeProvider = (*PracticeScreen)(nil)
var _ screen.Closer = (*PracticeScreen)(nil)

// New creates a screen that generates a default-sized test on Init.
func New(svc *service.Service, scope store.Scope) *PracticeScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &PracticeScreen{
		ctx:     ctx,
		cancel:  cancel,
		svc:     svc,
		scope:   scope,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent))),
		answers: quiz.AnswerMap{},
		raw:     viewport.New(),
	}
}

// Resume retakes a test that was generated earlier.
func Resume(svc *service.Service, scope store.Scope, t *service.TestOutcome) *PracticeScreen {
	s := New(svc, scope)
	s.load(t)
	return s
}

func (s *PracticeScreen) Init() tea.Cmd {
	if s.phase != phaseGenerating {
		return s.focus()
	}
	req := quiz.DefaultTestRequest(s.scope.Topic, s.scope.ClassName, s.scope.Subject)
	if s.scope.Board != "" {
		req.Board = s.scope.Board
	}
	svc, ctx := s.svc, s.ctx
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		out, err := svc.GenerateTest(ctx, req)
		return testReadyMsg{Outcome: out, Err: err}
	})
}

// Close cancels test generation or grading still in flight.
func (s *PracticeScreen) Close() {
	s.cancel()
}

func (s *PracticeScreen) Title() string {
	return "Practice Test"
}

func (s *PracticeScreen) Scope() string {
	return layout.Scope(s.scope.Board, s.scope.ClassName, s.scope.Subject)
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAnswering:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Answer"}}
		if s.isChoice() {
			hints = append(hints, layout.KeyHint{Key: "↑↓", Description: "Choose"})
		}
		return append(hints,
			layout.KeyHint{Key: "Tab", Description: "Skip"},
			layout.KeyHint{Key: "Shift+Tab", Description: "Previous"},
			layout.KeyHint{Key: "Esc", Description: "Abandon"},
		)
	case phaseReview:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Shift+Tab", Description: "Previous"},
			{Key: "Esc", Description: "Abandon"},
		}
	case phaseRaw:
		return []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}, {Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

// Answers returns the answers collected so far, keyed by answer key.
func (s *PracticeScreen) Answers() quiz.AnswerMap {
	return s.answers
}

func (s *PracticeScreen) load(t *service.TestOutcome) {
	s.test = t
	if t.Bank == nil {
		s.phase = phaseRaw
		s.raw.SetContent(t.Raw)
		return
	}
	s.keys = t.Bank.Keys()
	s.current = 0
	if len(s.keys) == 0 {
		s.phase = phaseReview
	} else {
		s.phase = phaseAnswering
		s.prepare()
	}
	s.submit = components.NewButton("Submit answers", true, s.grade)
}

func (s *PracticeScreen) isChoice() bool {
	return s.phase == phaseAnswering && s.test.Bank.Options(s.keys[s.current]) != nil
}

// prepare builds the input widget for the current question.
func (s *PracticeScreen) prepare() {
	k := s.keys[s.current]
	prompt, _ := s.test.Bank.Prompt(k)
	prev := s.answers[k.String()]
	if opts := s.test.Bank.Options(k); opts != nil {
		s.choice = components.NewMultiChoice(prompt, opts)
		s.choice.Select(prev)
		return
	}
	s.input = components.NewTextInput("Type your answer", 0)
	s.input.SetValue(prev)
}

func (s *PracticeScreen) focus() tea.Cmd {
	if s.phase == phaseAnswering && !s.isChoice() {
		return s.input.Init()
	}
	return nil
}

// move jumps to question i, or to the review page past the last question.
func (s *PracticeScreen) move(i int) tea.Cmd {
	if i < 0 {
		i = 0
	}
	if i >= len(s.keys) {
		s.current = len(s.keys)
		s.phase = phaseReview
		return nil
	}
	s.current = i
	s.phase = phaseAnswering
	s.prepare()
	return s.focus()
}

func (s *PracticeScreen) record(value string) {
	key := s.keys[s.current].String()
	if value == "" {
		delete(s.answers, key)
		return
	}
	s.answers[key] = value
}

func (s *PracticeScreen) grade() tea.Cmd {
	s.phase = phaseGrading
	s.errMsg = ""
	ctx, svc, test, answers := s.ctx, s.svc, s.test, s.answers
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		out, err := svc.SubmitTest(ctx, service.Submission{
			TestID:  test.TestID,
			Request: test.Request,
			Bank:    test.Bank,
			Answers: answers,
		})
		return gradedMsg{Outcome: out, Err: err}
	})
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case testReadyMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.load(msg.Outcome)
		return s, s.focus()

	case gradedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.phase = phaseReview
			return s, nil
		}
		next := results.New(s.scope, s.test.Bank, s.answers, msg.Outcome.Evaluation)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case spinner.TickMsg:
		if s.phase != phaseGenerating && s.phase != phaseGrading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering && !s.isChoice() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch s.phase {
	case phaseRaw:
		var cmd tea.Cmd
		s.raw, cmd = s.raw.Update(msg)
		return s, cmd

	case phaseReview:
		switch msg.String() {
		case "shift+tab":
			return s, s.move(len(s.keys) - 1)
		}
		var cmd tea.Cmd
		s.submit, cmd = s.submit.Update(msg)
		return s, cmd

	case phaseAnswering:
		switch msg.String() {
		case "tab":
			return s, s.move(s.current + 1)
		case "shift+tab":
			return s, s.move(s.current - 1)
		}
		if s.isChoice() {
			s.choice, _ = s.choice.Update(msg)
			if s.choice.Submitted() {
				s.record(s.choice.Chosen())
				return s, s.move(s.current + 1)
			}
			return s, nil
		}
		if msg.String() == "enter" {
			s.record(s.input.Value())
			return s, s.move(s.current + 1)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PracticeScreen) View(width, height int) string {
	if s.errMsg != "" && s.phase != phaseReview {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}

	switch s.phase {
	case phaseGenerating:
		return centered(width, s.spinner.View()+" Generating a test on "+s.scope.Topic+"...")
	case phaseGrading:
		return centered(width, s.spinner.View()+" Grading your answers...")
	case phaseRaw:
		note := theme.Hint.Render("The test could not be read as questions. The model's response is shown as is.")
		s.raw.SetWidth(width - 4)
		s.raw.SetHeight(max(1, height-4))
		return "\n  " + note + "\n\n" + lipgloss.NewStyle().Padding(0, 2).Render(s.raw.View())
	case phaseReview:
		return s.reviewView(width)
	}
	return s.questionView(width)
}

func (s *PracticeScreen) questionView(width int) string {
	k := s.keys[s.current]
	var b strings.Builder
	b.WriteString("\n")

	bar := components.NewProgressBar(
		fmt.Sprintf("Question %d of %d", s.current+1, len(s.keys)),
		s.current, len(s.keys), false, min(width-4, 70))
	b.WriteString("  " + bar.View() + "\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  %s · %s", k.Category.DisplayName(), k.Difficulty)))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Width(width-4).Padding(0, 2)
	if s.isChoice() {
		b.WriteString(body.Render(s.choice.View()))
		return b.String()
	}
	prompt, _ := s.test.Bank.Prompt(k)
	b.WriteString(body.Inherit(lipgloss.NewStyle().Foreground(theme.Text).Bold(true)).Render(prompt))
	b.WriteString("\n\n")
	s.input.SetWidth(width - 8)
	b.WriteString("  " + s.input.View())
	return b.String()
}

func (s *PracticeScreen) reviewView(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Ready to submit?"))
	b.WriteString("\n\n")
	b.WriteString(theme.Subtitle.Width(width).Render(
		fmt.Sprintf("%d of %d questions answered", len(s.answers), len(s.keys))))
	b.WriteString("\n\n")
	if s.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("Grading failed: " + s.errMsg))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.submit.View()))
	return b.String()
}

func centered(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render("\n\n" + text)
}

// Package results shows the grader's corrections for a submitted test.
package results

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduai/internal/grading"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/ui/layout"
	"github.com/abhisek/eduai/internal/ui/theme"
)

// ResultsScreen lists every question with the learner's answer and the
// grader's verdict.
type ResultsScreen struct {
	scope   store.Scope
	bank    *quiz.QuestionBank
	answers quiz.AnswerMap
	eval    *grading.Evaluation

	view  viewport.Model
	width int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)
var _ screen.ScopeProvider = (*ResultsScreen)(nil)

// New creates a results screen. bank may be nil when only the grader's raw
// feedback is available.
func New(scope store.Scope, bank *quiz.QuestionBank, answers quiz.AnswerMap, eval *grading.Evaluation) *ResultsScreen {
	return &ResultsScreen{
		scope:   scope,
		bank:    bank,
		answers: answers,
		eval:    eval,
		view:    viewport.New(),
	}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) Scope() string {
	return layout.Scope(s.scope.Board, s.scope.ClassName, s.scope.Subject)
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "h", Description: "Home"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "h" {
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	var cmd tea.Cmd
	s.view, cmd = s.view.Update(msg)
	return s, cmd
}

func (s *ResultsScreen) View(width, height int) string {
	summary := s.summaryLine()
	if width != s.width {
		s.width = width
		s.view.SetContent(s.Render(width - 4))
	}
	s.view.SetWidth(width - 4)
	s.view.SetHeight(max(1, height-4))
	return "\n" + theme.Title.Width(width).Render(summary) + "\n\n" +
		lipgloss.NewStyle().Padding(0, 2).Render(s.view.View())
}

func (s *ResultsScreen) summaryLine() string {
	if !s.eval.Structured() {
		return "Feedback"
	}
	sum := s.eval.Summary()
	line := fmt.Sprintf("%d of %d correct", sum.Correct, sum.Graded)
	if sum.Scored > 0 {
		line += fmt.Sprintf(" · score %g", sum.Score)
	}
	return line
}

// Render lays out the corrections as text wrapped to width.
func (s *ResultsScreen) Render(width int) string {
	wrap := lipgloss.NewStyle().Width(max(10, width))
	if !s.eval.Structured() {
		return wrap.Inherit(theme.Body).Render(s.eval.Raw)
	}

	var b strings.Builder
	for _, key := range s.orderedKeys() {
		c := s.eval.Corrections[key]
		prompt := key
		if k, err := quiz.ParseAnswerKey(key); err == nil && s.bank != nil {
			if p, ok := s.bank.Prompt(k); ok {
				prompt = p
			}
		}

		mark := theme.Incorrect.Render("✗")
		if c.IsCorrect {
			mark = theme.Correct.Render("✓")
		}
		b.WriteString(wrap.Render(mark + " " + lipgloss.NewStyle().Bold(true).Render(prompt)))
		b.WriteString("\n")

		answer := s.answers[key]
		if answer == "" {
			answer = "(no answer)"
		}
		b.WriteString(wrap.Render("   Your answer: " + answer))
		b.WriteString("\n")
		if !c.IsCorrect && c.CorrectAnswer != "" {
			b.WriteString(wrap.Foreground(theme.Success).Render("   Correct answer: " + c.CorrectAnswer))
			b.WriteString("\n")
		}
		if v, ok := c.NumericScore(); ok {
			b.WriteString(wrap.Foreground(theme.Accent).Render(fmt.Sprintf("   Score: %g", v)))
			b.WriteString("\n")
		}
		if c.Feedback != "" {
			b.WriteString(wrap.Inherit(theme.Hint).Render("   " + c.Feedback))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// orderedKeys lists corrected keys in question order, followed by any keys
// the grader returned that are not in the bank.
func (s *ResultsScreen) orderedKeys() []string {
	seen := make(map[string]bool, len(s.eval.Corrections))
	var keys []string
	if s.bank != nil {
		for _, k := range s.bank.Keys() {
			if _, ok := s.eval.Corrections[k.String()]; ok {
				keys = append(keys, k.String())
				seen[k.String()] = true
			}
		}
	}
	var extra []string
	for k := range s.eval.Corrections {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

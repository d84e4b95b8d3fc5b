package results

import (
	"encoding/json"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/grading"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/store"
)

func testBank() *quiz.QuestionBank {
	var b quiz.QuestionBank
	_ = json.Unmarshal([]byte(`{
		"mcqs": {"EASY": [{"question": "SI unit of force?", "options": ["Newton", "Joule"], "answer": "Newton"}]},
		"short_qa": {"HARD": [{"question": "Why do tyres have treads?", "answer": "Grip", "points": 2}]}
	}`), &b)
	return &b
}

func TestResultsScreen_Structured(t *testing.T) {
	ev := &grading.Evaluation{Corrections: quiz.CorrectionMap{
		"short_HARD_0": {IsCorrect: false, Score: json.RawMessage("1"), Feedback: "Mention friction", CorrectAnswer: "They increase friction"},
		"mcq_EASY_0":   {IsCorrect: true, Feedback: "Right"},
		"zzz_extra":    {IsCorrect: true},
	}}
	answers := quiz.AnswerMap{"mcq_EASY_0": "Newton"}
	s := New(store.Scope{Topic: "Theme 4: Friction"}, testBank(), answers, ev)

	if got := s.summaryLine(); got != "2 of 3 correct · score 1" {
		t.Errorf("summary = %q", got)
	}

	out := s.Render(100)
	for _, want := range []string{"SI unit of force?", "Your answer: Newton", "(no answer)", "Correct answer: They increase friction", "Mention friction", "zzz_extra"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
	if strings.Index(out, "SI unit") > strings.Index(out, "tyres") {
		t.Error("corrections should follow question order")
	}
	if strings.Index(out, "tyres") > strings.Index(out, "zzz_extra") {
		t.Error("unknown keys should come last")
	}
}

func TestResultsScreen_Fallback(t *testing.T) {
	ev := &grading.Evaluation{Raw: "Overall good effort."}
	s := New(store.Scope{}, nil, quiz.AnswerMap{}, ev)
	if s.summaryLine() != "Feedback" {
		t.Errorf("summary = %q", s.summaryLine())
	}
	if !strings.Contains(s.Render(80), "Overall good effort.") {
		t.Error("raw feedback should be shown")
	}
	if s.View(80, 24) == "" {
		t.Error("expected a view")
	}
}

func TestResultsScreen_HomeKey(t *testing.T) {
	s := New(store.Scope{}, nil, quiz.AnswerMap{}, &grading.Evaluation{Raw: "ok"})
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Errorf("expected PopToRootMsg, got %T", cmd())
	}
}

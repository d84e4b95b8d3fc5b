package practice

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/screens/results"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/workflow"
)

const bankReply = "```json\n" + `{
  "mcqs": {"EASY": [{"question": "SI unit of force?", "options": ["Joule", "Newton", "Watt", "Pascal"], "answer": "Newton", "explanation": "F = ma"}]},
  "true_false": {"EASY": [{"statement": "Pressure is force per unit area.", "answer": true, "explanation": "P = F/A"}]},
  "fill_blanks": {"EASY": [{"question": "Friction opposes ____.", "answer": "motion", "explanation": ""}]}
}` + "\n```"

const gradingReply = `{
  "mcq_EASY_0": {"is_correct": true, "feedback": "Right", "correct_answer": "Newton"},
  "tf_EASY_0": {"is_correct": true, "feedback": "Right", "correct_answer": "true"},
  "fill_EASY_0": {"is_correct": true, "feedback": "Right", "correct_answer": "motion"}
}`

var scope = store.Scope{Board: "ICSE", ClassName: "Class 8", Subject: "Physics", Topic: "Theme 4: Friction"}

func testService(bank string) *service.Service {
	c := workflow.CompleterFunc(func(ctx context.Context, _ string) (string, error) {
		if llm.PurposeFrom(ctx) == workflow.PurposeGrading {
			return gradingReply, nil
		}
		return bank, nil
	})
	return service.New(c, nil, service.Options{})
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// readyScreen returns a screen with the generated test loaded.
func readyScreen(t *testing.T, bank string) *PracticeScreen {
	t.Helper()
	svc := testService(bank)
	out, err := svc.GenerateTest(context.Background(), quiz.DefaultTestRequest(scope.Topic, scope.ClassName, scope.Subject))
	if err != nil {
		t.Fatalf("GenerateTest: %v", err)
	}
	s := New(svc, scope)
	scr, _ := s.Update(testReadyMsg{Outcome: out})
	return scr.(*PracticeScreen)
}

func TestPracticeScreen_Title(t *testing.T) {
	s := New(testService(bankReply), scope)
	if s.Title() != "Practice Test" {
		t.Errorf("Title = %q", s.Title())
	}
	if s.View(80, 24) == "" {
		t.Error("expected non-empty view while generating")
	}
}

func TestPracticeScreen_AnswersEveryQuestion(t *testing.T) {
	s := readyScreen(t, bankReply)
	if s.phase != phaseAnswering || len(s.keys) != 3 {
		t.Fatalf("phase = %v, keys = %d", s.phase, len(s.keys))
	}

	var scr screen.Screen = s
	// MCQ: choose option B directly.
	scr, _ = scr.Update(keyPress('b'))
	// True/false: cursor starts on "True".
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	// Fill in the blank: type and submit.
	for _, r := range "motion" {
		scr, _ = scr.Update(keyPress(r))
	}
	scr, _ = scr.Update(specialKey(tea.KeyEnter))

	ps := scr.(*PracticeScreen)
	if ps.phase != phaseReview {
		t.Fatalf("expected review phase, got %v", ps.phase)
	}
	want := map[string]string{"mcq_EASY_0": "Newton", "tf_EASY_0": "True", "fill_EASY_0": "motion"}
	for k, v := range want {
		if got := ps.Answers()[k]; got != v {
			t.Errorf("answer %s = %q, want %q", k, got, v)
		}
	}
	if ps.View(100, 30) == "" {
		t.Error("expected review view")
	}
}

func TestPracticeScreen_SkipAndGoBack(t *testing.T) {
	s := readyScreen(t, bankReply)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyTab))
	ps := scr.(*PracticeScreen)
	if ps.current != 1 {
		t.Fatalf("current = %d after tab, want 1", ps.current)
	}
	if len(ps.Answers()) != 0 {
		t.Error("skipping should not record an answer")
	}

	scr, _ = scr.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if scr.(*PracticeScreen).current != 0 {
		t.Errorf("shift+tab should return to the first question")
	}
}

func TestPracticeScreen_SubmitReplacesWithResults(t *testing.T) {
	s := readyScreen(t, bankReply)
	s.answers["mcq_EASY_0"] = "Newton"
	s.move(len(s.keys))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a grading command")
	}
	if s.phase != phaseGrading {
		t.Fatalf("phase = %v, want grading", s.phase)
	}

	out, err := s.svc.SubmitTest(context.Background(), service.Submission{Bank: s.test.Bank, Answers: s.answers})
	if err != nil {
		t.Fatalf("SubmitTest: %v", err)
	}
	_, cmd = s.Update(gradedMsg{Outcome: out})
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*results.ResultsScreen); !ok {
		t.Errorf("expected results screen, got %T", msg.Screen)
	}
}

func TestPracticeScreen_UnparsedTestShowsRaw(t *testing.T) {
	s := readyScreen(t, "I cannot produce JSON today.")
	if s.phase != phaseRaw {
		t.Fatalf("phase = %v, want raw", s.phase)
	}
	if s.View(100, 30) == "" {
		t.Error("expected raw view")
	}
}

func TestPracticeScreen_GenerationError(t *testing.T) {
	s := New(testService(bankReply), scope)
	scr, _ := s.Update(testReadyMsg{Err: &llm.ServiceError{Err: &llm.ErrRateLimit{}}})
	if scr.(*PracticeScreen).errMsg == "" {
		t.Error("expected an error message")
	}
}

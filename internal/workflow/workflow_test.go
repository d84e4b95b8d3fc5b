package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/quiz"
)

// recorder is a Completer that answers from a function and records every
// prompt together with the purpose found in its context.
type recorder struct {
	mu       sync.Mutex
	prompts  []string
	purposes []string
	reply    func(purpose, prompt string) (string, error)
}

func (r *recorder) Complete(ctx context.Context, prompt string) (string, error) {
	purpose := llm.PurposeFrom(ctx)
	r.mu.Lock()
	r.prompts = append(r.prompts, prompt)
	r.purposes = append(r.purposes, purpose)
	r.mu.Unlock()
	return r.reply(purpose, prompt)
}

func studyRequest() quiz.StudyRequest {
	return quiz.StudyRequest{
		Theme:     "Theme 3: Force and Pressure",
		ClassName: "Class 8",
		Subject:   "Physics",
		Counts:    quiz.DefaultStudyCounts(),
	}
}

func TestStudyWorkflow_SevenSections(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			rec := &recorder{reply: func(purpose, _ string) (string, error) {
				return "text for " + purpose, nil
			}}
			var steps []quiz.Section
			w := &StudyWorkflow{
				Completer: rec,
				Parallel:  parallel,
				OnStep:    func(s quiz.Section, _, total int) { steps = append(steps, s) },
			}

			m, err := w.Run(context.Background(), studyRequest(), nil)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(rec.prompts) != 7 {
				t.Fatalf("got %d calls, want 7", len(rec.prompts))
			}
			if len(steps) != 7 {
				t.Errorf("got %d progress callbacks, want 7", len(steps))
			}
			for _, s := range quiz.Sections {
				if got, want := m.Get(s), "text for study-"+string(s); got != want {
					t.Errorf("section %s = %q, want %q", s, got, want)
				}
			}
			if len(m.Map()) != 7 {
				t.Errorf("material has %d keys, want 7", len(m.Map()))
			}
		})
	}
}

func TestStudyWorkflow_SequentialOrderAndPrompts(t *testing.T) {
	rec := &recorder{reply: func(string, string) (string, error) { return "", nil }}
	docs := quiz.DocumentContext{{Name: "notes.txt", Text: "Pressure = thrust / area"}}

	m, err := NewStudyWorkflow(rec).Run(context.Background(), studyRequest(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, s := range quiz.Sections {
		if rec.purposes[i] != StudyPurpose(s) {
			t.Errorf("call %d purpose = %q, want %q", i, rec.purposes[i], StudyPurpose(s))
		}
		if !strings.Contains(rec.prompts[i], "Pressure = thrust / area") {
			t.Errorf("call %d prompt is missing the document text", i)
		}
		// Empty model output is kept as an empty section.
		if m.Get(s) != "" {
			t.Errorf("section %s = %q, want empty", s, m.Get(s))
		}
	}
	if !strings.Contains(rec.prompts[1], "MCQs section only") {
		t.Errorf("second prompt should ask for MCQs, got suffix %q", lastLine(rec.prompts[1]))
	}
}

func TestStudyWorkflow_FailFast(t *testing.T) {
	boom := &llm.ServiceError{Purpose: "study-true_false", Model: "mock", Err: errors.New("503")}
	rec := &recorder{reply: func(purpose, _ string) (string, error) {
		if purpose == "study-true_false" {
			return "", boom
		}
		return "ok", nil
	}}

	m, err := NewStudyWorkflow(rec).Run(context.Background(), studyRequest(), nil)
	if m != nil {
		t.Fatal("expected no material on failure")
	}
	var svc *llm.ServiceError
	if !errors.As(err, &svc) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	// study_content, mcqs, true_false: nothing after the failing step.
	if len(rec.prompts) != 3 {
		t.Errorf("got %d calls, want 3", len(rec.prompts))
	}
}

func TestStudyWorkflow_ParallelFailure(t *testing.T) {
	rec := &recorder{reply: func(purpose, _ string) (string, error) {
		if purpose == "study-long_qa" {
			return "", errors.New("timeout")
		}
		return "ok", nil
	}}
	w := &StudyWorkflow{Completer: rec, Parallel: true}

	if m, err := w.Run(context.Background(), studyRequest(), nil); err == nil || m != nil {
		t.Fatalf("expected failure, got %v, %v", m, err)
	}
}

func TestStudyWorkflow_ContextStepFunc(t *testing.T) {
	rec := &recorder{reply: func(string, string) (string, error) { return "ok", nil }}
	var fromOption, fromContext []int
	w := &StudyWorkflow{
		Completer: rec,
		OnStep:    func(_ quiz.Section, i, _ int) { fromOption = append(fromOption, i) },
	}
	ctx := WithStepFunc(context.Background(), func(_ quiz.Section, i, total int) {
		if total != 7 {
			t.Errorf("total = %d, want 7", total)
		}
		fromContext = append(fromContext, i)
	})

	if _, err := w.Run(ctx, studyRequest(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fmt.Sprint(fromContext) != "[0 1 2 3 4 5 6]" {
		t.Errorf("context steps = %v", fromContext)
	}
	if len(fromOption) != 7 {
		t.Errorf("option steps = %v", fromOption)
	}
}

func TestStudyWorkflow_RejectsBadCounts(t *testing.T) {
	rec := &recorder{reply: func(string, string) (string, error) { return "", nil }}
	req := studyRequest()
	req.Counts.MCQ = -1

	_, err := NewStudyWorkflow(rec).Run(context.Background(), req, nil)
	var ce *quiz.CountError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CountError, got %v", err)
	}
	if len(rec.prompts) != 0 {
		t.Error("no model call should be made for invalid counts")
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

const twoMCQs = "Sure! Here is the test:\n```json\n" + `{
  "mcqs": {
    "EASY": [{"question": "SI unit of force?", "options": ["Newton", "Joule", "Watt", "Pascal"], "answer": "Newton", "explanation": "F = ma"}],
    "MEDIUM": [{"question": "Pressure is?", "options": ["F/A", "F*A", "A/F", "F+A"], "answer": "F/A", "explanation": "by definition"}]
  },
  "true_false": {"EASY": [], "MEDIUM": [], "HARD": [], "HARDEST": []},
  "fill_blanks": {"EASY": [], "MEDIUM": [], "HARD": [], "HARDEST": []},
  "short_qa": {"EASY": [], "MEDIUM": [], "HARD": [], "HARDEST": []},
  "medium_qa": {"EASY": [], "MEDIUM": [], "HARD": [], "HARDEST": []},
  "long_qa": {"EASY": [], "MEDIUM": [], "HARD": [], "HARDEST": []}
}` + "\n```\nGood luck!"

func onlyMCQs(n int) quiz.TestRequest {
	return quiz.TestRequest{
		Theme:     "Theme 3: Force and Pressure",
		ClassName: "Class 8",
		Subject:   "Physics",
		NumMCQ:    n,
	}
}

func TestTestWorkflow_EndToEnd(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: twoMCQs})
	c := llm.NewCompleterWith(mock, llm.CompleterConfig{Temperature: 0.7})

	res, err := NewTestWorkflow(c).Run(context.Background(), onlyMCQs(2))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Structured() {
		t.Fatalf("expected a question bank, raw = %q", res.Raw)
	}
	if got := res.Bank.Count(quiz.CategoryMCQ); got != 2 {
		t.Errorf("mcq count = %d, want 2", got)
	}
	if got := res.Bank.Total(); got != 2 {
		t.Errorf("total = %d, want 2", got)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if res.Raw != twoMCQs {
		t.Error("raw output should be kept unmodified")
	}

	if mock.CallCount() != 1 {
		t.Fatalf("got %d calls, want 1", mock.CallCount())
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "Physics") {
		t.Error("prompt should mention the subject")
	}
	if mock.Calls[0].Format != llm.FormatJSON {
		t.Errorf("format = %s, want json", mock.Calls[0].Format)
	}
}

func TestTestWorkflow_PurposeLabel(t *testing.T) {
	rec := &recorder{reply: func(string, string) (string, error) { return "{}", nil }}
	if _, err := NewTestWorkflow(rec).Run(context.Background(), onlyMCQs(1)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.purposes[0] != PurposeTestGen {
		t.Errorf("purpose = %q, want %q", rec.purposes[0], PurposeTestGen)
	}
}

func TestTestWorkflow_ZeroCountCategoryIsEmpty(t *testing.T) {
	rec := &recorder{reply: func(string, string) (string, error) { return twoMCQs, nil }}
	req := quiz.DefaultTestRequest("Theme 3: Force and Pressure", "Class 8", "Physics")
	req.NumMCQ = 0

	res, err := NewTestWorkflow(rec).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Structured() {
		t.Fatal("expected a question bank")
	}
	if got := res.Bank.Count(quiz.CategoryMCQ); got != 0 {
		t.Errorf("mcq count = %d, want 0", got)
	}
	for _, d := range quiz.Difficulties {
		if res.Bank.MCQs[d] == nil {
			t.Errorf("band %s should be an empty sequence, not missing", d)
		}
	}
}

func TestTestWorkflow_Fallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "I'm sorry, I cannot produce that test right now."},
		{"broken fence", "```json\n{\"mcqs\": {\"EASY\": [\n```"},
		{"not an object", "[1, 2, 3]"},
		{"scalar", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{reply: func(string, string) (string, error) { return tt.raw, nil }}
			res, err := NewTestWorkflow(rec).Run(context.Background(), onlyMCQs(2))
			if err != nil {
				t.Fatalf("malformed output must not be an error: %v", err)
			}
			if res.Structured() {
				t.Fatal("expected fallback")
			}
			fb := res.Fallback()
			if len(fb) != 1 || fb["raw_response"] != tt.raw {
				t.Errorf("fallback = %v", fb)
			}
			if _, ok := res.Data().(map[string]any); !ok {
				t.Errorf("Data() = %T, want fallback map", res.Data())
			}
		})
	}
}

func TestTestWorkflow_RepairsKeepTheBank(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  quiz.AnswerKey
	}{
		{
			name: "lowercase band",
			raw:  `{"mcqs": {"easy": [{"question": "Unit of force?", "options": ["Newton", "Joule", "Watt", "Pascal"], "answer": "Newton"}]}}`,
			key:  quiz.AnswerKey{Category: quiz.CategoryMCQ, Difficulty: quiz.Easy},
		},
		{
			name: "unknown band",
			raw:  `{"mcqs": {"TRIVIAL": [{"question": "Unit of force?", "options": ["Newton", "Joule", "Watt", "Pascal"], "answer": "Newton"}]}}`,
			key:  quiz.AnswerKey{Category: quiz.CategoryMCQ, Difficulty: "TRIVIAL"},
		},
		{
			name: "numeric mcq answer",
			raw:  `{"mcqs": {"EASY": [{"question": "How many options?", "options": ["1", "2", "3", "4"], "answer": 4}]}}`,
			key:  quiz.AnswerKey{Category: quiz.CategoryMCQ, Difficulty: quiz.Easy},
		},
		{
			name: "text points",
			raw:  `{"long_qa": {"HARD": [{"question": "Explain buoyancy.", "answer": "...", "points": "2-3"}]}}`,
			key:  quiz.AnswerKey{Category: quiz.CategoryLongQA, Difficulty: quiz.Hard},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{reply: func(string, string) (string, error) { return tt.raw, nil }}
			req := onlyMCQs(1)
			req.NumLongQA = 1

			res, err := NewTestWorkflow(rec).Run(context.Background(), req)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !res.Structured() {
				t.Fatalf("expected a question bank, got fallback %v", res.Fallback())
			}
			if _, ok := res.Bank.Prompt(tt.key); !ok {
				t.Errorf("question %s missing from bank", tt.key)
			}
			if len(res.Warnings) == 0 {
				t.Error("expected the repair to be reported as a warning")
			}
		})
	}
}

func TestTestWorkflow_SoftValidationWarnings(t *testing.T) {
	raw := `{"mcqs": {"EASY": [{"question": "Odd one?", "options": ["a", "b"], "answer": "z", "explanation": ""}]}}`
	rec := &recorder{reply: func(string, string) (string, error) { return raw, nil }}

	res, err := NewTestWorkflow(rec).Run(context.Background(), onlyMCQs(1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Structured() {
		t.Fatal("soft validation must not reject the bank")
	}
	if len(res.Warnings) < 2 {
		t.Errorf("expected option-count and answer warnings, got %v", res.Warnings)
	}
}

func TestTestWorkflow_ServiceError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	c := llm.NewCompleterWith(mock, llm.CompleterConfig{})

	res, err := NewTestWorkflow(c).Run(context.Background(), onlyMCQs(2))
	if res != nil {
		t.Fatal("expected no result")
	}
	var svc *llm.ServiceError
	if !errors.As(err, &svc) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svc.Purpose != PurposeTestGen {
		t.Errorf("purpose = %q", svc.Purpose)
	}
}

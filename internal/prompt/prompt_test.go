package prompt

import (
	"strings"
	"testing"

	"github.com/abhisek/eduai/internal/quiz"
)

func studyRequest() quiz.StudyRequest {
	return quiz.StudyRequest{
		Theme:     "Theme 3: Force and Pressure",
		ClassName: "Class 8",
		Subject:   "Physics",
		Counts:    quiz.DefaultStudyCounts(),
	}
}

func TestStudyPrompt_Deterministic(t *testing.T) {
	docs := quiz.DocumentContext{
		{Name: "notes.pdf", Text: "Pressure is force per unit area."},
		{Name: "extra.txt", Text: "Thrust acts normal to the surface."},
	}
	a := StudyPrompt(studyRequest(), docs)
	b := StudyPrompt(studyRequest(), docs)
	if a != b {
		t.Fatal("identical inputs produced different prompts")
	}
}

func TestStudyPrompt_Contents(t *testing.T) {
	p := StudyPrompt(studyRequest(), nil)

	for _, want := range []string{
		"You are an expert ICSE teacher for Class 8 Physics.",
		"Theme: Theme 3: Force and Pressure\n",
		"Board: ICSE\n",
		NoDocuments,
		`Generation parameters (counts): {"mcq":6,"fill":8,"short":6,"medium":4,"long":2}`,
		"EASY, MEDIUM, HARD, HARDEST",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestStudyPrompt_Documents(t *testing.T) {
	docs := quiz.DocumentContext{
		{Name: "a.pdf", Text: "alpha"},
		{Name: "b.docx", Text: ""},
	}
	p := StudyPrompt(studyRequest(), docs)
	if !strings.Contains(p, "File: a.pdf\nalpha\nFile: b.docx\n(no extract)") {
		t.Errorf("document block not rendered as expected:\n%s", p)
	}
	if strings.Contains(p, NoDocuments) {
		t.Error("no-documents marker present despite documents")
	}
}

func TestStudySectionPrompt(t *testing.T) {
	base := StudyPrompt(studyRequest(), nil)
	for _, s := range quiz.Sections {
		p := StudySectionPrompt(studyRequest(), nil, s)
		if !strings.HasPrefix(p, base+"\n\nNow provide the ") {
			t.Errorf("%s: suffix not appended to full prompt", s)
		}
		if !strings.HasSuffix(p, "only.") && !strings.HasSuffix(p, "counts.") && !strings.HasSuffix(p, "length.") {
			t.Errorf("%s: unexpected suffix %q", s, p[len(base):])
		}
	}
}

func TestTestPrompt(t *testing.T) {
	req := quiz.DefaultTestRequest("Theme 7: Sound", "Class 8", "Physics")
	req.NumMCQ = 2
	p := TestPrompt(req)

	for _, want := range []string{
		"You are an expert ICSE Class 8 Physics teacher.",
		"1. MCQs: Generate 2 multiple choice questions",
		"6. LONG Q&A (10-20 lines): Generate 1 long question & answer pairs",
		`"true_false": {`,
		`"points": 5`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if TestPrompt(req) != p {
		t.Error("TestPrompt is not deterministic")
	}

	req.Board = "JEE Foundation"
	if !strings.Contains(TestPrompt(req), "Board: JEE Foundation\n") {
		t.Error("custom board not embedded")
	}
}

func TestGradingPrompt(t *testing.T) {
	bank := &quiz.QuestionBank{
		MCQs: map[quiz.Difficulty][]quiz.MCQ{
			quiz.Easy: {{Question: "Unit of force?", Options: []string{"N", "J", "W", "Pa"}, Answer: "N"}},
		},
	}

	p, err := GradingPrompt(bank, nil)
	if err != nil {
		t.Fatalf("GradingPrompt: %v", err)
	}
	if !strings.Contains(p, "STUDENT ANSWERS:\n{}") {
		t.Errorf("empty answers should render as {}:\n%s", p)
	}
	if !strings.Contains(p, `"question": "Unit of force?"`) {
		t.Error("bank not embedded as indented JSON")
	}

	p2, err := GradingPrompt(bank, quiz.AnswerMap{"mcq_EASY_0": "N"})
	if err != nil {
		t.Fatalf("GradingPrompt: %v", err)
	}
	if !strings.Contains(p2, "{\n  \"mcq_EASY_0\": \"N\"\n}") {
		t.Errorf("answers not embedded:\n%s", p2)
	}
}

package study

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/workflow"
)

var scope = store.Scope{Board: "ICSE", ClassName: "Class 8", Subject: "Physics", Topic: "Theme 7: Sound"}

func testService() *service.Service {
	c := workflow.CompleterFunc(func(ctx context.Context, _ string) (string, error) {
		return "text for " + llm.PurposeFrom(ctx), nil
	})
	return service.New(c, nil, service.Options{})
}

// drain runs cmd and every command it leads to until generation ends.
func drain(t *testing.T, s *StudyScreen, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 20; i++ {
		msg := cmd()
		switch msg.(type) {
		case sectionDoneMsg, materialReadyMsg:
		default:
			t.Fatalf("unexpected message %T", msg)
		}
		_, cmd = s.Update(msg)
	}
}

func TestStudyScreen_GeneratesAllSections(t *testing.T) {
	s := New(testService(), scope)
	if !strings.Contains(s.View(100, 30), "Study Content") {
		t.Error("progress view should list the sections")
	}

	drain(t, s, s.generate())

	if s.material == nil {
		t.Fatalf("material not loaded, err = %q", s.errMsg)
	}
	if len(s.done) != len(quiz.Sections) {
		t.Errorf("progress saw %d sections, want %d", len(s.done), len(quiz.Sections))
	}
	if got := s.material.Get(quiz.SectionLongQA); got != "text for study-long_qa" {
		t.Errorf("long_qa = %q", got)
	}
}

func TestStudyScreen_TabCyclesSections(t *testing.T) {
	m := quiz.NewStudyMaterial()
	m.Set(quiz.SectionContent, "key points")
	m.Set(quiz.SectionMCQ, "question one")
	s := NewViewer(scope, m)
	s.Init()

	if s.Section() != quiz.SectionContent {
		t.Fatalf("section = %s", s.Section())
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.Section() != quiz.SectionMCQ {
		t.Errorf("section after tab = %s", s.Section())
	}
	if !strings.Contains(s.View(100, 30), "question one") {
		t.Error("view should show the mcq section")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if s.Section() != quiz.SectionLongQA {
		t.Errorf("shift+tab should wrap to the last section, got %s", s.Section())
	}
}

func TestStudyScreen_Error(t *testing.T) {
	s := New(testService(), scope)
	s.Update(materialReadyMsg{Err: &llm.ServiceError{Purpose: "study-mcqs", Err: &llm.ErrProviderUnavailable{}}})
	if !strings.Contains(s.View(100, 30), "Error") {
		t.Error("expected the error to be shown")
	}
}

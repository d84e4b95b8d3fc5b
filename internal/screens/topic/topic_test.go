package topic

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screens/history"
	"github.com/abhisek/eduai/internal/screens/practice"
	"github.com/abhisek/eduai/internal/screens/study"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/workflow"
)

var scope = store.Scope{Board: "ICSE", ClassName: "Class 8", Subject: "Physics", Topic: "Theme 4: Friction"}

func keyPress(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func TestTopicScreen_ActionsPushScreens(t *testing.T) {
	c := workflow.CompleterFunc(func(context.Context, string) (string, error) { return "", nil })
	svc := service.New(c, nil, service.Options{})
	s := New(svc, scope, "Friction and its effects")

	tests := []struct {
		key   string
		check func(any) bool
	}{
		{"1", func(v any) bool { _, ok := v.(*study.StudyScreen); return ok }},
		{"2", func(v any) bool { _, ok := v.(*practice.PracticeScreen); return ok }},
		{"3", func(v any) bool { _, ok := v.(*history.HistoryScreen); return ok }},
	}
	for _, tt := range tests {
		_, cmd := s.Update(keyPress(tt.key))
		if cmd == nil {
			t.Fatalf("key %s: expected a command", tt.key)
		}
		msg, ok := cmd().(router.PushScreenMsg)
		if !ok {
			t.Fatalf("key %s: expected PushScreenMsg, got %T", tt.key, cmd())
		}
		if !tt.check(msg.Screen) {
			t.Errorf("key %s pushed %T", tt.key, msg.Screen)
		}
	}
}

func TestTopicScreen_NoServiceDisablesActions(t *testing.T) {
	s := New(nil, scope, "")
	for _, k := range []string{"1", "2", "3"} {
		if _, cmd := s.Update(keyPress(k)); cmd != nil {
			t.Errorf("key %s should do nothing without a provider", k)
		}
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "Theme 4: Friction") {
		t.Error("view should show the topic")
	}
	if s.Scope() != "ICSE · Class 8 · Physics" {
		t.Errorf("Scope = %q", s.Scope())
	}
}

package picker

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduai/internal/catalog"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screen"
	"github.com/abhisek/eduai/internal/screens/topic"
	"github.com/abhisek/eduai/internal/store"
)

const testCatalog = `
boards:
  - name: ICSE
    classes:
      - name: Class 8
        subjects:
          - name: Physics
            topics:
              - name: "Theme 1: Matter"
                description: Particles and states
              - name: "Theme 4: Friction"
          - name: Chemistry
`

func testCat(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }
func down() tea.KeyPressMsg  { return tea.KeyPressMsg{Code: tea.KeyDown} }

// choose presses enter on p and returns the pushed screen.
func choose(t *testing.T, p screen.Screen) screen.Screen {
	t.Helper()
	_, cmd := p.Update(enter())
	if cmd == nil {
		t.Fatal("expected a command after enter")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	return msg.Screen
}

func TestPicker_WalksToTopic(t *testing.T) {
	cat := testCat(t)
	p := New(nil, cat, store.Scope{})
	if p.Level() != LevelBoard {
		t.Fatalf("level = %v, want board", p.Level())
	}

	class := choose(t, p).(*PickerScreen)
	if class.Level() != LevelClass || class.scope.Board != "ICSE" {
		t.Fatalf("got level %v scope %+v", class.Level(), class.scope)
	}
	subject := choose(t, class).(*PickerScreen)
	if subject.Level() != LevelSubject {
		t.Fatalf("level = %v, want subject", subject.Level())
	}
	topics := choose(t, subject).(*PickerScreen)
	if topics.Level() != LevelTopic || topics.scope.Subject != "Physics" {
		t.Fatalf("got level %v scope %+v", topics.Level(), topics.scope)
	}

	topics.Update(down())
	next := choose(t, topics)
	ts, ok := next.(*topic.TopicScreen)
	if !ok {
		t.Fatalf("expected topic screen, got %T", next)
	}
	if ts.Scope() != "ICSE · Class 8 · Physics" {
		t.Errorf("scope = %q", ts.Scope())
	}
}

func TestPicker_SubjectWithoutTopics(t *testing.T) {
	p := New(nil, testCat(t), store.Scope{Board: "ICSE", ClassName: "Class 8", Subject: "Chemistry"})
	if p.Level() != LevelTopic {
		t.Fatalf("level = %v, want topic", p.Level())
	}
	if _, cmd := p.Update(enter()); cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
	if p.View(80, 20) == "" {
		t.Error("expected an empty-list message")
	}
}

func TestPicker_NavigationBounds(t *testing.T) {
	p := New(nil, testCat(t), store.Scope{Board: "ICSE", ClassName: "Class 8"})
	for range 5 {
		p.Update(down())
	}
	if p.selected != 1 {
		t.Errorf("selected = %d, want 1 (last)", p.selected)
	}
	p.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	p.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if p.selected != 0 {
		t.Errorf("selected = %d, want 0", p.selected)
	}
}

package history

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/router"
	"github.com/abhisek/eduai/internal/screens/practice"
	"github.com/abhisek/eduai/internal/screens/results"
	"github.com/abhisek/eduai/internal/screens/study"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/workflow"
)

const bankReply = `{"mcqs": {"EASY": [{"question": "SI unit of force?", "options": ["Newton", "Joule"], "answer": "Newton"}]}}`

const gradingReply = `{"mcq_EASY_0": {"is_correct": true, "feedback": "Right", "correct_answer": "Newton"}}`

var scope = store.Scope{Board: "ICSE", ClassName: "Class 8", Subject: "Physics", Topic: "Theme 4: Friction"}

// seededService returns a service whose store holds one material, one test
// and one submission for scope.
func seededService(t *testing.T) *service.Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c := workflow.CompleterFunc(func(ctx context.Context, _ string) (string, error) {
		switch p := llm.PurposeFrom(ctx); p {
		case workflow.PurposeTestGen:
			return bankReply, nil
		case workflow.PurposeGrading:
			return gradingReply, nil
		default:
			return "text for " + p, nil
		}
	})
	svc := service.New(c, st.Records(), service.Options{})

	ctx := context.Background()
	_, err = svc.GenerateStudy(ctx, quiz.StudyRequest{
		Board: scope.Board, Theme: scope.Topic, ClassName: scope.ClassName, Subject: scope.Subject,
		Counts: quiz.DefaultStudyCounts(),
	}, nil)
	require.NoError(t, err)

	req := quiz.DefaultTestRequest(scope.Topic, scope.ClassName, scope.Subject)
	test, err := svc.GenerateTest(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, test.TestID)

	_, err = svc.SubmitTest(ctx, service.Submission{TestID: test.TestID, Answers: quiz.AnswerMap{"mcq_EASY_0": "Newton"}})
	require.NoError(t, err)
	return svc
}

// loaded runs the screen's load command and applies the result.
func loaded(t *testing.T, s *HistoryScreen, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	s.Update(cmd())
	require.True(t, s.loaded)
	require.Empty(t, s.errMsg)
}

// open presses enter and returns the pushed screen message.
func open(t *testing.T, s *HistoryScreen) router.PushScreenMsg {
	t.Helper()
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok, "expected PushScreenMsg")
	return msg
}

func TestHistoryScreen_Lists(t *testing.T) {
	svc := seededService(t)
	s := New(svc, scope)
	loaded(t, s, s.Init())

	assert.Equal(t, service.HistoryMaterials, s.Kind())
	require.Len(t, s.rows, 1)
	_, ok := open(t, s).Screen.(*study.StudyScreen)
	assert.True(t, ok, "materials open in the study viewer")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	loaded(t, s, cmd)
	assert.Equal(t, service.HistoryTests, s.Kind())
	require.Len(t, s.rows, 1)
	_, ok = open(t, s).Screen.(*practice.PracticeScreen)
	assert.True(t, ok, "tests open for practice")

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	loaded(t, s, cmd)
	require.Len(t, s.rows, 1)
	assert.Contains(t, s.rows[0].info, "1/1 correct")
	_, ok = open(t, s).Screen.(*results.ResultsScreen)
	assert.True(t, ok, "submissions open as results")

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	loaded(t, s, cmd)
	assert.Equal(t, service.HistoryUploads, s.Kind())
	assert.Empty(t, s.rows)
	assert.Contains(t, s.View(100, 30), "Nothing here yet.")
}

func TestHistoryScreen_ScopeFilter(t *testing.T) {
	svc := seededService(t)
	s := New(svc, store.Scope{Topic: "Theme 7: Sound"})
	loaded(t, s, s.Init())
	assert.Empty(t, s.rows)
}

func TestHistoryScreen_StaleResultIgnored(t *testing.T) {
	svc := seededService(t)
	s := New(svc, scope)
	cmd := s.Init()
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})

	s.Update(cmd())
	assert.False(t, s.loaded, "a result for another tab must not be shown")
}

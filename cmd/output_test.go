package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/eduai/internal/grading"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/store"
)

func sampleBank(t *testing.T) *quiz.QuestionBank {
	t.Helper()
	var b quiz.QuestionBank
	require.NoError(t, json.Unmarshal([]byte(`{
		"mcqs": {"EASY": [{"question": "SI unit of force?", "options": ["Newton", "Joule", "Watt", "Pascal"], "answer": "Newton"}]},
		"short_qa": {"HARD": [{"question": "Why do tyres have treads?", "answer": "To increase friction", "points": 2}]}
	}`), &b))
	return &b
}

func TestPrintBank(t *testing.T) {
	var buf bytes.Buffer
	printBank(&buf, sampleBank(t), false)
	out := buf.String()
	assert.Contains(t, out, "[mcq_EASY_0] SI unit of force?")
	assert.Contains(t, out, "    B) Joule")
	assert.NotContains(t, out, "answer:")

	buf.Reset()
	printBank(&buf, sampleBank(t), true)
	assert.Contains(t, buf.String(), "answer: To increase friction")
}

func TestPrintEvaluation(t *testing.T) {
	ev := &grading.Evaluation{Corrections: quiz.CorrectionMap{
		"short_HARD_0": {IsCorrect: false, Score: json.RawMessage("1"), Feedback: "Mention friction", CorrectAnswer: "To increase friction"},
		"mcq_EASY_0":   {IsCorrect: true},
	}}
	answers := quiz.AnswerMap{"mcq_EASY_0": "Newton", "short_HARD_0": "Looks"}

	var buf bytes.Buffer
	printEvaluation(&buf, sampleBank(t), answers, ev)
	out := buf.String()

	assert.Less(t, strings.Index(out, "mcq_EASY_0"), strings.Index(out, "short_HARD_0"), "question order")
	assert.Contains(t, out, "✓ [mcq_EASY_0] your answer: Newton")
	assert.Contains(t, out, "correct: To increase friction")
	assert.Contains(t, out, "1 of 2 correct, score 1")

	buf.Reset()
	printEvaluation(&buf, nil, answers, &grading.Evaluation{Raw: "Good effort overall."})
	assert.Contains(t, buf.String(), "Good effort overall.")
}

func TestPrintEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printEvents(&buf, nil))
	assert.Equal(t, "No LLM calls recorded.\n", buf.String())

	buf.Reset()
	events := []store.LLMEvent{
		{ID: 2, Timestamp: time.Now(), LLMRequestEventData: store.LLMRequestEventData{
			Purpose: "grading", Model: "gpt-4o-mini", InputTokens: 900, OutputTokens: 300, Success: true}},
		{ID: 1, Timestamp: time.Now(), LLMRequestEventData: store.LLMRequestEventData{
			Purpose: "test-gen", Model: "gpt-4o-mini", Success: false}},
	}
	require.NoError(t, printEvents(&buf, events))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "grading")
	assert.True(t, strings.HasSuffix(lines[2], "✗"))
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, &store.LLMEvent{ID: 7, LLMRequestEventData: store.LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o", ErrorMessage: "rate limited", RequestBody: "[user]\nhello",
	}})
	out := buf.String()
	assert.Contains(t, out, "ID:        7")
	assert.Contains(t, out, "Error:     rate limited")
	assert.Contains(t, out, "[user]\nhello")
	assert.Contains(t, out, "(not captured)")
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf, nil, nil))
	assert.Contains(t, buf.String(), "No LLM usage")

	buf.Reset()
	err := printUsage(&buf,
		[]store.PurposeUsage{{Purpose: "grading", Calls: 2, InputTokens: 1000, OutputTokens: 500, AvgLatencyMs: 1200}},
		[]store.ModelUsage{
			{Model: "gpt-4o-mini", Calls: 2, InputTokens: 1000, OutputTokens: 500},
			{Model: "local-llama", Calls: 1},
		})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "1500")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "No pricing for: local-llama")
}

func TestTruncateAndCost(t *testing.T) {
	assert.Equal(t, "Théo", truncate("Théorème", 4))
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "$0.0012", formatCost(0.00123))
	assert.Equal(t, "$1.50", formatCost(1.5))
}

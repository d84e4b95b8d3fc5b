// Package grading asks the model to evaluate a learner's answers against a
// generated question bank.
package grading

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/eduai/internal/extract"
	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/prompt"
	"github.com/abhisek/eduai/internal/quiz"
)

// Purpose is the event label for grading calls.
const Purpose = "grading"

// Completer sends one prompt and returns the model's raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Evaluation is the grader's verdict. Corrections is nil when the model's
// output could not be parsed; Raw always holds the original text.
type Evaluation struct {
	Corrections quiz.CorrectionMap
	Raw         string
}

// Structured reports whether corrections were parsed.
func (e *Evaluation) Structured() bool { return e.Corrections != nil }

// Fallback returns the raw-feedback object stored in place of corrections.
func (e *Evaluation) Fallback() map[string]any {
	return map[string]any{quiz.RawFeedbackKey: e.Raw}
}

// Data returns the corrections, or the fallback object when there are none.
func (e *Evaluation) Data() any {
	if e.Corrections != nil {
		return e.Corrections
	}
	return e.Fallback()
}

// Summary totals an evaluation.
type Summary struct {
	Graded  int
	Correct int

	// Score sums the numeric scores; Scored counts how many were numeric.
	Score  float64
	Scored int
}

// Summary totals the parsed corrections. It is zero for a fallback.
func (e *Evaluation) Summary() Summary {
	var s Summary
	for _, c := range e.Corrections {
		s.Graded++
		if c.IsCorrect {
			s.Correct++
		}
		if v, ok := c.NumericScore(); ok {
			s.Score += v
			s.Scored++
		}
	}
	return s
}

// Evaluator grades answer maps with one completion call each.
type Evaluator struct {
	completer Completer
	logger    *slog.Logger
}

// NewEvaluator returns an evaluator. A nil logger uses slog.Default.
func NewEvaluator(c Completer, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{completer: c, logger: logger}
}

// Evaluate grades answers against bank. An empty answer map is still sent
// to the model. Malformed output is returned as a fallback evaluation, not
// an error.
func (e *Evaluator) Evaluate(ctx context.Context, bank *quiz.QuestionBank, answers quiz.AnswerMap) (*Evaluation, error) {
	p, err := prompt.GradingPrompt(bank, answers)
	if err != nil {
		return nil, fmt.Errorf("build grading prompt: %w", err)
	}

	ctx = llm.WithJSONOutput(llm.WithPurpose(ctx, Purpose))
	text, err := e.completer.Complete(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("grade answers: %w", err)
	}

	ev := &Evaluation{Raw: text}
	parsed := extract.JSON(text)
	value, ok := parsed.Value()
	if !ok {
		e.logger.Warn("grading output is not JSON, keeping raw feedback", "error", parsed.Err())
		return ev, nil
	}
	corrections, err := quiz.DecodeCorrections(value)
	if err != nil {
		e.logger.Warn("grading output is not a correction map, keeping raw feedback", "error", err)
		return ev, nil
	}

	for _, v := range llm.Violations(llm.Validate(quiz.CorrectionsSchema, value)) {
		e.logger.Warn("grading output check", "issue", "schema "+v)
	}
	for key := range corrections {
		if _, err := quiz.ParseAnswerKey(key); err != nil {
			e.logger.Debug("correction for unknown key", "key", key)
		}
	}

	ev.Corrections = corrections
	s := ev.Summary()
	e.logger.Info("answers graded", "answers", len(answers), "graded", s.Graded, "correct", s.Correct)
	return ev, nil
}

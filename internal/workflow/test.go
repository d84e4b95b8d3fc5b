package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/eduai/internal/extract"
	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/prompt"
	"github.com/abhisek/eduai/internal/quiz"
)

// TestResult is the outcome of a test generation run. Exactly one of Bank
// or the fallback is meaningful: Bank is nil when the model's output could
// not be turned into a question bank.
type TestResult struct {
	Bank *quiz.QuestionBank

	// Raw is the unmodified model output.
	Raw string

	// Warnings lists soft validation findings. They never block the result.
	Warnings []string
}

// Structured reports whether the output was parsed into a question bank.
func (r *TestResult) Structured() bool { return r.Bank != nil }

// Fallback returns the raw-response object stored in place of a bank.
func (r *TestResult) Fallback() map[string]any {
	return map[string]any{quiz.RawResponseKey: r.Raw}
}

// Data returns the bank, or the fallback object when there is none.
func (r *TestResult) Data() any {
	if r.Bank != nil {
		return r.Bank
	}
	return r.Fallback()
}

// TestWorkflow generates a question bank in a single completion call.
type TestWorkflow struct {
	Completer Completer
	Logger    *slog.Logger
}

// NewTestWorkflow returns a test workflow using c.
func NewTestWorkflow(c Completer) *TestWorkflow {
	return &TestWorkflow{Completer: c}
}

// Run asks the model for a test matching req. Malformed output is not an
// error: the result carries the raw text instead of a bank.
func (w *TestWorkflow) Run(ctx context.Context, req quiz.TestRequest) (*TestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := logger(w.Logger).With("theme", req.Theme, "class", req.ClassName, "subject", req.Subject)

	ctx = llm.WithJSONOutput(llm.WithPurpose(ctx, PurposeTestGen))
	text, err := w.Completer.Complete(ctx, prompt.TestPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("generate test: %w", err)
	}

	res := &TestResult{Raw: text}
	parsed := extract.JSON(text)
	value, ok := parsed.Value()
	if !ok {
		log.Warn("test output is not JSON, keeping raw response", "error", parsed.Err())
		return res, nil
	}
	bank, err := quiz.DecodeQuestionBank(value)
	if err != nil {
		log.Warn("test output is not a question bank, keeping raw response", "tier", parsed.Tier(), "error", err)
		return res, nil
	}

	for _, v := range llm.Violations(llm.Validate(quiz.QuestionBankSchema, value)) {
		res.Warnings = append(res.Warnings, "schema "+v)
	}

	for _, c := range quiz.Categories {
		if req.CountFor(c) == 0 {
			if n := bank.Count(c); n > 0 {
				log.Info("dropping questions for category with zero requested", "category", c, "dropped", n)
			}
			bank.Clear(c)
		}
	}

	for _, issue := range quiz.Check(bank) {
		res.Warnings = append(res.Warnings, issue.String())
	}
	for _, msg := range res.Warnings {
		log.Warn("question bank check", "issue", msg)
	}

	res.Bank = bank
	log.Info("test generated", "questions", bank.Total(), "tier", parsed.Tier(), "warnings", len(res.Warnings))
	return res, nil
}

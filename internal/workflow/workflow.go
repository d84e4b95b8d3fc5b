// Package workflow turns topic requests into generated study material and
// tests by driving a Completer through fixed sequences of prompts.
package workflow

import (
	"context"
	"log/slog"
)

// Completer sends one prompt and returns the model's raw text.
// *llm.Completer satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Purpose labels attached to each completion for event logging.
const (
	PurposeTestGen = "test-gen"
	PurposeGrading = "grading"
)

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

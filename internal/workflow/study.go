package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/prompt"
	"github.com/abhisek/eduai/internal/quiz"
)

// StepFunc is called after each study section completes. index is the
// section's position in quiz.Sections, total is the number of sections.
type StepFunc func(section quiz.Section, index, total int)

// StudyWorkflow produces the seven sections of study material, one
// completion call per section.
type StudyWorkflow struct {
	Completer Completer

	// Parallel runs all sections concurrently. Output and error behavior
	// are the same as the sequential run.
	Parallel bool

	// OnStep, when set, reports progress. In parallel mode it may be called
	// from several goroutines, one call at a time.
	OnStep StepFunc

	Logger *slog.Logger
}

// NewStudyWorkflow returns a sequential study workflow.
func NewStudyWorkflow(c Completer) *StudyWorkflow {
	return &StudyWorkflow{Completer: c}
}

// StudyPurpose is the purpose label for a study section call.
func StudyPurpose(s quiz.Section) string {
	return "study-" + string(s)
}

// Run generates every section for req. The first failing call aborts the
// run and no material is returned.
func (w *StudyWorkflow) Run(ctx context.Context, req quiz.StudyRequest, docs quiz.DocumentContext) (*quiz.StudyMaterial, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := logger(w.Logger).With("theme", req.Theme, "class", req.ClassName, "subject", req.Subject)
	start := time.Now()

	var (
		texts []string
		err   error
	)
	if w.Parallel {
		texts, err = w.runParallel(ctx, req, docs, log)
	} else {
		texts, err = w.runSequential(ctx, req, docs, log)
	}
	if err != nil {
		log.Warn("study material generation failed", "error", err)
		return nil, err
	}

	material := quiz.NewStudyMaterial()
	for i, s := range quiz.Sections {
		material.Set(s, texts[i])
	}
	log.Info("study material generated", "sections", len(quiz.Sections), "elapsed", time.Since(start))
	return material, nil
}

func (w *StudyWorkflow) runSequential(ctx context.Context, req quiz.StudyRequest, docs quiz.DocumentContext, log *slog.Logger) ([]string, error) {
	texts := make([]string, len(quiz.Sections))
	for i, s := range quiz.Sections {
		text, err := w.step(ctx, req, docs, s)
		if err != nil {
			return nil, err
		}
		texts[i] = text
		log.Debug("study section done", "section", s, "chars", len(text))
		w.report(ctx, s, i)
	}
	return texts, nil
}

func (w *StudyWorkflow) runParallel(ctx context.Context, req quiz.StudyRequest, docs quiz.DocumentContext, log *slog.Logger) ([]string, error) {
	texts := make([]string, len(quiz.Sections))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range quiz.Sections {
		g.Go(func() error {
			text, err := w.step(gctx, req, docs, s)
			if err != nil {
				return err
			}
			texts[i] = text
			log.Debug("study section done", "section", s, "chars", len(text))

			mu.Lock()
			defer mu.Unlock()
			w.report(ctx, s, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

func (w *StudyWorkflow) step(ctx context.Context, req quiz.StudyRequest, docs quiz.DocumentContext, s quiz.Section) (string, error) {
	ctx = llm.WithPurpose(ctx, StudyPurpose(s))
	text, err := w.Completer.Complete(ctx, prompt.StudySectionPrompt(req, docs, s))
	if err != nil {
		return "", fmt.Errorf("study section %s: %w", s, err)
	}
	return text, nil
}

func (w *StudyWorkflow) report(ctx context.Context, s quiz.Section, i int) {
	if w.OnStep != nil {
		w.OnStep(s, i, len(quiz.Sections))
	}
	if fn := stepFuncFrom(ctx); fn != nil {
		fn(s, i, len(quiz.Sections))
	}
}

type stepKey struct{}

// WithStepFunc attaches a progress callback for a single run. It is called
// in addition to StudyWorkflow.OnStep.
func WithStepFunc(ctx context.Context, fn StepFunc) context.Context {
	return context.WithValue(ctx, stepKey{}, fn)
}

func stepFuncFrom(ctx context.Context) StepFunc {
	fn, _ := ctx.Value(stepKey{}).(StepFunc)
	return fn
}

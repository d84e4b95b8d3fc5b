// Package service combines the generation workflows, the grader and the
// record store into the operations exposed by the CLI, TUI and HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/eduai/internal/docs"
	"github.com/abhisek/eduai/internal/grading"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/store"
	"github.com/abhisek/eduai/internal/workflow"
)

// Service runs generation and grading and records every outcome. Saving is
// best effort: a failed write is logged and the generated content is still
// returned.
type Service struct {
	study   *workflow.StudyWorkflow
	test    *workflow.TestWorkflow
	grader  *grading.Evaluator
	records store.RecordRepo // nil disables persistence
	logger  *slog.Logger
}

// Options configures a Service.
type Options struct {
	// ParallelStudy runs the study sections concurrently.
	ParallelStudy bool

	// OnStudyStep reports study progress.
	OnStudyStep workflow.StepFunc

	Logger *slog.Logger
}

// New builds a Service around a completer and an optional record repo.
func New(c workflow.Completer, records store.RecordRepo, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		study: &workflow.StudyWorkflow{
			Completer: c,
			Parallel:  opts.ParallelStudy,
			OnStep:    opts.OnStudyStep,
			Logger:    logger,
		},
		test:    &workflow.TestWorkflow{Completer: c, Logger: logger},
		grader:  grading.NewEvaluator(c, logger),
		records: records,
		logger:  logger,
	}
}

// StudyOutcome is the result of GenerateStudy. RecordID is empty when the
// material was not saved.
type StudyOutcome struct {
	Material *quiz.StudyMaterial
	RecordID string
}

// GenerateStudy produces study material and records it.
func (s *Service) GenerateStudy(ctx context.Context, req quiz.StudyRequest, dc quiz.DocumentContext) (*StudyOutcome, error) {
	m, err := s.study.Run(ctx, req, dc)
	if err != nil {
		return nil, err
	}
	out := &StudyOutcome{Material: m}

	rec := &store.Material{
		Scope:   scopeOf(req.BoardOrDefault(), req.ClassName, req.Subject, req.Theme),
		Params:  mustJSON(req),
		Files:   dc.Names(),
		Outputs: mustJSON(m),
	}
	if s.save(ctx, "material", func() error { return s.records.SaveMaterial(ctx, rec) }) {
		out.RecordID = rec.ID
	}
	return out, nil
}

// TestOutcome is the result of GenerateTest.
type TestOutcome struct {
	*workflow.TestResult
	Request quiz.TestRequest
	TestID  string
}

// GenerateTest produces a test and records it. The stored data is the
// question bank, or the raw-response object when parsing failed.
func (s *Service) GenerateTest(ctx context.Context, req quiz.TestRequest) (*TestOutcome, error) {
	res, err := s.test.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &TestOutcome{TestResult: res, Request: req}

	rec := &store.Test{
		Scope:      scopeOf(req.BoardOrDefault(), req.ClassName, req.Subject, req.Theme),
		Params:     mustJSON(req),
		Data:       mustJSON(res.Data()),
		Structured: res.Structured(),
	}
	if s.save(ctx, "test", func() error { return s.records.SaveTest(ctx, rec) }) {
		out.TestID = rec.ID
	}
	return out, nil
}

// ErrUngradable is returned when a stored test has no question bank.
var ErrUngradable = errors.New("test has no question bank to grade against")

// LoadTest fetches a stored test and decodes its request and bank.
func (s *Service) LoadTest(ctx context.Context, id string) (*TestOutcome, error) {
	if s.records == nil {
		return nil, fmt.Errorf("test %s: %w", id, store.ErrNotFound)
	}
	t, err := s.records.GetTest(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &TestOutcome{TestResult: &workflow.TestResult{}, TestID: t.ID}
	if err := json.Unmarshal(t.Params, &out.Request); err != nil {
		return nil, fmt.Errorf("decode params of test %s: %w", id, err)
	}
	if !t.Structured {
		var fb map[string]string
		if err := json.Unmarshal(t.Data, &fb); err == nil {
			out.Raw = fb[quiz.RawResponseKey]
		}
		return out, nil
	}
	var bank quiz.QuestionBank
	if err := json.Unmarshal(t.Data, &bank); err != nil {
		return nil, fmt.Errorf("decode bank of test %s: %w", id, err)
	}
	out.Bank = &bank
	return out, nil
}

// Submission is a learner's answers to a generated test.
type Submission struct {
	TestID  string
	Request quiz.TestRequest
	Bank    *quiz.QuestionBank
	Answers quiz.AnswerMap
}

// GradeOutcome is the result of SubmitTest.
type GradeOutcome struct {
	*grading.Evaluation
	SubmissionID string
}

// SubmitTest grades a submission and records it. When TestID is set and
// Bank is nil the bank is loaded from the store.
func (s *Service) SubmitTest(ctx context.Context, sub Submission) (*GradeOutcome, error) {
	if sub.Bank == nil {
		if sub.TestID == "" {
			return nil, ErrUngradable
		}
		t, err := s.LoadTest(ctx, sub.TestID)
		if err != nil {
			return nil, err
		}
		if t.Bank == nil {
			return nil, fmt.Errorf("test %s: %w", sub.TestID, ErrUngradable)
		}
		sub.Bank = t.Bank
		sub.Request = t.Request
	}
	answers := sub.Answers
	if answers == nil {
		answers = quiz.AnswerMap{}
	}

	ev, err := s.grader.Evaluate(ctx, sub.Bank, answers)
	if err != nil {
		return nil, err
	}
	out := &GradeOutcome{Evaluation: ev}

	req := sub.Request
	rec := &store.Submission{
		Scope:       scopeOf(req.BoardOrDefault(), req.ClassName, req.Subject, req.Theme),
		TestID:      sub.TestID,
		Answers:     mustJSON(answers),
		Corrections: mustJSON(ev.Data()),
		Structured:  ev.Structured(),
	}
	if s.save(ctx, "submission", func() error { return s.records.SaveSubmission(ctx, rec) }) {
		out.SubmissionID = rec.ID
	}
	return out, nil
}

// RecordUpload extracts an upload's text and records the file. The
// returned document is nil when the file carries no usable text; that is
// not an error.
func (s *Service) RecordUpload(ctx context.Context, scope store.Scope, name string, data []byte) (*quiz.Document, error) {
	text, err := docs.Extract(name, data)
	var doc *quiz.Document
	switch {
	case err == nil:
		doc = &quiz.Document{Name: name, Text: docs.Truncate(text, docs.MaxChars)}
	case errors.Is(err, docs.ErrSkipped), errors.Is(err, docs.ErrNoText):
		s.logger.Info("upload has no text", "file", name, "reason", err)
	default:
		s.logger.Warn("upload could not be read", "file", name, "error", err)
	}

	rec := &store.Upload{Scope: scope, FileName: name, Size: int64(len(data))}
	if doc != nil {
		rec.Excerpt = docs.Truncate(doc.Text, 200)
	}
	s.save(ctx, "upload", func() error { return s.records.SaveUpload(ctx, rec) })
	return doc, nil
}

// HistoryKind selects which records History returns.
type HistoryKind string

const (
	HistoryMaterials   HistoryKind = "materials"
	HistoryTests       HistoryKind = "tests"
	HistorySubmissions HistoryKind = "submissions"
	HistoryUploads     HistoryKind = "uploads"
)

// History lists stored records newest first. The returned value is a slice
// of the matching store record type.
func (s *Service) History(ctx context.Context, kind HistoryKind, opts store.ListOpts) (any, error) {
	if s.records == nil {
		return []any{}, nil
	}
	switch kind {
	case HistoryMaterials:
		return s.records.ListMaterials(ctx, opts)
	case HistoryTests:
		return s.records.ListTests(ctx, opts)
	case HistorySubmissions:
		return s.records.ListSubmissions(ctx, opts)
	case HistoryUploads:
		return s.records.ListUploads(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown history kind %q", kind)
	}
}

// Records exposes the underlying repo, which may be nil.
func (s *Service) Records() store.RecordRepo { return s.records }

// save runs fn and logs failures. It reports whether the record was written.
func (s *Service) save(ctx context.Context, what string, fn func() error) bool {
	if s.records == nil {
		return false
	}
	if err := fn(); err != nil {
		s.logger.WarnContext(ctx, "could not save record, continuing", "record", what, "error", err)
		return false
	}
	return true
}

func scopeOf(board, class, subject, topic string) store.Scope {
	return store.Scope{Board: board, ClassName: class, Subject: subject, Topic: topic}
}

// mustJSON encodes values that are always representable as JSON.
func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("encode %T: %v", v, err))
	}
	return data
}

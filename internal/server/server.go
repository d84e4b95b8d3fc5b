// Package server exposes the generation service as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/eduai/internal/catalog"
	"github.com/abhisek/eduai/internal/docs"
	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
)

const (
	// maxUploadBytes bounds a multipart upload request.
	maxUploadBytes = 50 << 20
	// maxBodyBytes bounds a JSON request body.
	maxBodyBytes = 4 << 20
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc     *service.Service
	catalog *catalog.Catalog
	ready   func(context.Context) error
	logger  *slog.Logger
}

// New creates a Handler. ready reports backend health for /readyz and may
// be nil.
func New(svc *service.Service, cat *catalog.Catalog, ready func(context.Context) error, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, catalog: cat, ready: ready, logger: logger}
}

// Router returns the complete HTTP router with middleware applied.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	h.Routes(r)
	return r
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/topics", h.handleTopics)
		r.Post("/study", h.handleStudy)
		r.Post("/tests", h.handleCreateTest)
		r.Get("/tests/{id}", h.handleGetTest)
		r.Post("/tests/{id}/submit", h.handleSubmit)
		r.Post("/uploads", h.handleUpload)
		r.Get("/history/{kind}", h.handleHistory)
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) handleTopics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"boards": h.catalog.Boards()})
}

type studyBody struct {
	quiz.StudyRequest
	Counts    *quiz.StudyCounts `json:"counts"`
	Documents []quiz.Document   `json:"documents"`
}

func (h *Handler) handleStudy(w http.ResponseWriter, r *http.Request) {
	var body studyBody
	if !h.decode(w, r, &body) {
		return
	}
	req := body.StudyRequest
	req.Counts = quiz.DefaultStudyCounts()
	if body.Counts != nil {
		req.Counts = *body.Counts
	}

	out, err := h.svc.GenerateStudy(r.Context(), req, docs.Clip(body.Documents))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       out.RecordID,
		"material": out.Material,
	})
}

func (h *Handler) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	req := quiz.DefaultTestRequest("", "", "")
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.svc.GenerateTest(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         out.TestID,
		"structured": out.Structured(),
		"test_data":  out.Data(),
		"warnings":   out.Warnings,
	})
}

func (h *Handler) handleGetTest(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.LoadTest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          out.TestID,
		"test_params": out.Request,
		"structured":  out.Structured(),
		"test_data":   out.Data(),
	})
}

type submitBody struct {
	Answers quiz.AnswerMap `json:"answers"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if !h.decode(w, r, &body) {
		return
	}

	out, err := h.svc.SubmitTest(r.Context(), service.Submission{
		TestID:  chi.URLParam(r, "id"),
		Answers: body.Answers,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	s := out.Summary()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          out.SubmissionID,
		"structured":  out.Structured(),
		"corrections": out.Data(),
		"summary": map[string]any{
			"graded":  s.Graded,
			"correct": s.Correct,
			"score":   s.Score,
		},
	})
}

type uploadResult struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Extracted bool   `json:"extracted"`
	Chars     int    `json:"chars"`
	Text      string `json:"text,omitempty"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form: "+err.Error()))
		return
	}
	scope := store.Scope{
		Board:     r.FormValue("board"),
		ClassName: r.FormValue("class_name"),
		Subject:   r.FormValue("subject"),
		Topic:     r.FormValue("topic"),
	}
	if scope.Board == "" {
		scope.Board = quiz.DefaultBoard
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody(`no files in form field "files"`))
		return
	}

	results := make([]uploadResult, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.writeError(w, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.writeError(w, err)
			return
		}

		doc, err := h.svc.RecordUpload(r.Context(), scope, fh.Filename, data)
		if err != nil {
			h.writeError(w, err)
			return
		}
		res := uploadResult{Name: fh.Filename, Size: fh.Size}
		if doc != nil {
			res.Extracted = true
			res.Chars = len([]rune(doc.Text))
			res.Text = doc.Text
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": results})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOpts{Scope: store.Scope{
		Board:     q.Get("board"),
		ClassName: q.Get("class_name"),
		Subject:   q.Get("subject"),
		Topic:     q.Get("topic"),
	}}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid limit"))
			return
		}
		opts.Limit = n
	}

	records, err := h.svc.History(r.Context(), service.HistoryKind(chi.URLParam(r, "kind")), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request body exceeds "+strconv.FormatInt(tooBig.Limit, 10)+" bytes"))
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error()))
	return false
}

// writeError maps service errors to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		countErr *quiz.CountError
		svcErr   *llm.ServiceError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &countErr):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUngradable):
		status = http.StatusConflict
	case errors.As(err, &svcErr):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

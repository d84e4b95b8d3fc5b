package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"entgo.io/ent/dialect"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
	if s.Dialect() != dialect.SQLite {
		t.Fatalf("dialect = %q, want sqlite3", s.Dialect())
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked in TestFileDatabase.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{tableUploads, tableMaterials, tableTests, tableSubmissions, tableLLMEvents} {
		var name string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	// Migrating twice is harmless.
	if err := s.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "eduai.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("EDUAI_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "eduai", "eduai.db"); p != want {
		t.Errorf("path = %q, want %q", p, want)
	}

	t.Setenv("EDUAI_DB", "postgres://user:pw@localhost/eduai")
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if !IsPostgresDSN(p) {
		t.Errorf("expected postgres DSN to pass through, got %q", p)
	}
}

func scope() Scope {
	return Scope{Board: "ICSE", ClassName: "Class 8", Subject: "Physics", Topic: "Theme 3: Force and Pressure"}
}

func TestSaveAndListMaterials(t *testing.T) {
	testMaterials(t, openTestStore(t).Records())
}

func testMaterials(t *testing.T, repo RecordRepo) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := range 3 {
		m := &Material{
			Scope:     scope(),
			Params:    json.RawMessage(`{"mcq":6}`),
			Files:     []string{fmt.Sprintf("notes-%d.pdf", i)},
			Outputs:   json.RawMessage(fmt.Sprintf(`{"study_content":"part %d"}`, i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.SaveMaterial(ctx, m); err != nil {
			t.Fatalf("save material %d: %v", i, err)
		}
		if m.ID == "" {
			t.Fatal("expected id to be assigned")
		}
	}
	other := scope()
	other.Topic = "Theme 7: Sound"
	if err := repo.SaveMaterial(ctx, &Material{Scope: other, Outputs: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("save other: %v", err)
	}

	got, err := repo.ListMaterials(ctx, ListOpts{Scope: scope()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d materials, want 3", len(got))
	}
	if got[0].Files[0] != "notes-2.pdf" {
		t.Errorf("newest first: got files %v", got[0].Files)
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("created_at = %v", got[0].CreatedAt)
	}

	var outputs map[string]string
	if err := json.Unmarshal(got[2].Outputs, &outputs); err != nil {
		t.Fatalf("decode outputs: %v", err)
	}
	if outputs["study_content"] != "part 0" {
		t.Errorf("outputs = %v", outputs)
	}

	limited, err := repo.ListMaterials(ctx, ListOpts{Scope: Scope{Board: "ICSE"}, Limit: 2})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit: got %d, want 2", len(limited))
	}

	all, err := repo.ListMaterials(ctx, ListOpts{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("unfiltered: got %d, want 4", len(all))
	}
}

func TestTestsAndSubmissions(t *testing.T) {
	testTestsAndSubmissions(t, openTestStore(t).Records())
}

func testTestsAndSubmissions(t *testing.T, repo RecordRepo) {
	ctx := context.Background()

	test := &Test{
		Scope:      scope(),
		Params:     json.RawMessage(`{"num_mcq":2}`),
		Data:       json.RawMessage(`{"mcqs":{"EASY":[]}}`),
		Structured: true,
	}
	if err := repo.SaveTest(ctx, test); err != nil {
		t.Fatalf("save test: %v", err)
	}

	got, err := repo.GetTest(ctx, test.ID)
	if err != nil {
		t.Fatalf("get test: %v", err)
	}
	if !got.Structured || got.Topic != scope().Topic {
		t.Errorf("unexpected test: %+v", got)
	}
	var data map[string]any
	if err := json.Unmarshal(got.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if _, ok := data["mcqs"]; !ok {
		t.Errorf("data = %v", data)
	}

	_, err = repo.GetTest(ctx, "missing")
	if !errors.Is(err, ErrNotFound) || !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	sub := &Submission{
		Scope:       scope(),
		TestID:      test.ID,
		Answers:     json.RawMessage(`{"mcq_EASY_0":"Newton"}`),
		Corrections: json.RawMessage(`{"raw_feedback":"could not grade"}`),
	}
	if err := repo.SaveSubmission(ctx, sub); err != nil {
		t.Fatalf("save submission: %v", err)
	}

	subs, err := repo.ListSubmissions(ctx, ListOpts{Scope: scope()})
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d submissions, want 1", len(subs))
	}
	if subs[0].TestID != test.ID || subs[0].Structured {
		t.Errorf("unexpected submission: %+v", subs[0])
	}

	tests, err := repo.ListTests(ctx, ListOpts{Scope: Scope{Subject: "Physics"}})
	if err != nil {
		t.Fatalf("list tests: %v", err)
	}
	if len(tests) != 1 {
		t.Errorf("got %d tests, want 1", len(tests))
	}
}

func TestUploads(t *testing.T) {
	s := openTestStore(t)
	repo := s.Records()
	ctx := context.Background()

	u := &Upload{
		Scope:    Scope{Board: "ICSE", ClassName: "Class 8", Subject: "Physics"},
		FileName: "pressure.pdf",
		Size:     2048,
		Excerpt:  "Pressure is thrust per unit area.",
	}
	if err := repo.SaveUpload(ctx, u); err != nil {
		t.Fatalf("save upload: %v", err)
	}
	got, err := repo.ListUploads(ctx, ListOpts{Scope: Scope{ClassName: "Class 8"}})
	if err != nil {
		t.Fatalf("list uploads: %v", err)
	}
	if len(got) != 1 || got[0].FileName != "pressure.pdf" || got[0].Size != 2048 {
		t.Errorf("unexpected uploads: %+v", got)
	}
}

func TestLLMEvents(t *testing.T) {
	testLLMEvents(t, openTestStore(t).EventRepo())
}

func testLLMEvents(t *testing.T, repo EventRepo) {
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "study-mcqs", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "[user]\nprompt", ResponseBody: "text"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "study-long_qa", InputTokens: 120, OutputTokens: 80, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "gpt-4o", Purpose: "test-gen", InputTokens: 300, OutputTokens: 900, LatencyMs: 1000, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Purpose != "test-gen" {
		t.Errorf("newest first: got %q", all[0].Purpose)
	}

	study, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "study-*"})
	if err != nil {
		t.Fatalf("query prefix: %v", err)
	}
	if len(study) != 2 {
		t.Errorf("prefix filter: got %d, want 2", len(study))
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Before: all[0].ID})
	if err != nil {
		t.Fatalf("query before: %v", err)
	}
	if len(limited) != 1 || limited[0].Purpose != "study-long_qa" {
		t.Errorf("before/limit: got %+v", limited)
	}

	e, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.RequestBody != "[user]\nprompt" || e.ResponseBody != "text" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if missing, err := repo.GetLLMEvent(ctx, 9999); err != nil || missing != nil {
		t.Fatalf("missing event: %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 3 {
		t.Fatalf("got %d purposes, want 3", len(byPurpose))
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("got %d models, want 2", len(byModel))
	}
	for _, m := range byModel {
		if m.Model == "gpt-4o-mini" && (m.Calls != 2 || m.InputTokens != 220 || m.OutputTokens != 130) {
			t.Errorf("gpt-4o-mini usage = %+v", m)
		}
	}
}

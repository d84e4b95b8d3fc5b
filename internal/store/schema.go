package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

// Table names.
const (
	tableUploads     = "file_uploads"
	tableMaterials   = "generated_materials"
	tableTests       = "tests"
	tableSubmissions = "test_submissions"
	tableLLMEvents   = "llm_request_events"
)

// columnTypes maps logical column kinds to backend types.
type columnTypes struct {
	json      string
	timestamp string
	serial    string
}

var dialectTypes = map[string]columnTypes{
	dialect.SQLite: {
		json:      "TEXT",
		timestamp: "TIMESTAMP",
		serial:    "INTEGER PRIMARY KEY AUTOINCREMENT",
	},
	dialect.Postgres: {
		json:      "JSONB",
		timestamp: "TIMESTAMPTZ",
		serial:    "BIGSERIAL PRIMARY KEY",
	},
}

// ddl returns the CREATE statements for the dialect. Placeholders {json},
// {ts} and {serial} are replaced with backend types.
func ddl(d string) []string {
	t := dialectTypes[d]
	r := strings.NewReplacer("{json}", t.json, "{ts}", t.timestamp, "{serial}", t.serial)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS file_uploads (
			id TEXT PRIMARY KEY,
			board TEXT NOT NULL,
			class_name TEXT NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL,
			file_size BIGINT NOT NULL,
			excerpt TEXT NOT NULL DEFAULT '',
			created_at {ts} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS generated_materials (
			id TEXT PRIMARY KEY,
			board TEXT NOT NULL,
			class_name TEXT NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			params {json} NOT NULL,
			files {json} NOT NULL,
			outputs {json} NOT NULL,
			created_at {ts} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tests (
			id TEXT PRIMARY KEY,
			board TEXT NOT NULL,
			class_name TEXT NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			test_params {json} NOT NULL,
			test_data {json} NOT NULL,
			structured BOOLEAN NOT NULL,
			created_at {ts} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS test_submissions (
			id TEXT PRIMARY KEY,
			test_id TEXT NOT NULL DEFAULT '',
			board TEXT NOT NULL,
			class_name TEXT NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			user_answers {json} NOT NULL,
			corrections {json} NOT NULL,
			structured BOOLEAN NOT NULL,
			created_at {ts} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS llm_request_events (
			id {serial},
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT '',
			created_at {ts} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_materials_scope ON generated_materials (board, class_name, subject, topic, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_tests_scope ON tests (board, class_name, subject, topic, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_scope ON test_submissions (board, class_name, subject, topic, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_llm_events_purpose ON llm_request_events (purpose)`,
	}
	for i, s := range stmts {
		stmts[i] = r.Replace(s)
	}
	return stmts
}

// migrate creates missing tables and indexes. It never alters or drops.
func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range ddl(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

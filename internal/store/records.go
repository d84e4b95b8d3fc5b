package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// Records returns the append-only record repository backed by this store.
func (s *Store) Records() RecordRepo {
	return &recordRepo{db: s.db, dialect: s.dialect}
}

type recordRepo struct {
	db      *sql.DB
	dialect string
}

var (
	uploadColumns     = []string{"id", "board", "class_name", "subject", "topic", "filename", "file_size", "excerpt", "created_at"}
	materialColumns   = []string{"id", "board", "class_name", "subject", "topic", "params", "files", "outputs", "created_at"}
	testColumns       = []string{"id", "board", "class_name", "subject", "topic", "test_params", "test_data", "structured", "created_at"}
	submissionColumns = []string{"id", "test_id", "board", "class_name", "subject", "topic", "user_answers", "corrections", "structured", "created_at"}
)

// stamp assigns an id and creation time when the caller left them empty.
func stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if at.IsZero() {
		*at = time.Now()
	}
	// Postgres keeps microseconds; truncate so both backends round-trip alike.
	*at = at.UTC().Truncate(time.Microsecond)
}

func (r *recordRepo) SaveUpload(ctx context.Context, u *Upload) error {
	stamp(&u.ID, &u.CreatedAt)
	return r.insert(ctx, tableUploads, uploadColumns,
		u.ID, u.Board, u.ClassName, u.Subject, u.Topic, u.FileName, u.Size, u.Excerpt, u.CreatedAt)
}

func (r *recordRepo) SaveMaterial(ctx context.Context, m *Material) error {
	stamp(&m.ID, &m.CreatedAt)
	files := m.Files
	if files == nil {
		files = []string{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}
	return r.insert(ctx, tableMaterials, materialColumns,
		m.ID, m.Board, m.ClassName, m.Subject, m.Topic,
		jsonText(m.Params), string(filesJSON), jsonText(m.Outputs), m.CreatedAt)
}

func (r *recordRepo) SaveTest(ctx context.Context, t *Test) error {
	stamp(&t.ID, &t.CreatedAt)
	return r.insert(ctx, tableTests, testColumns,
		t.ID, t.Board, t.ClassName, t.Subject, t.Topic,
		jsonText(t.Params), jsonText(t.Data), t.Structured, t.CreatedAt)
}

func (r *recordRepo) SaveSubmission(ctx context.Context, sub *Submission) error {
	stamp(&sub.ID, &sub.CreatedAt)
	return r.insert(ctx, tableSubmissions, submissionColumns,
		sub.ID, sub.TestID, sub.Board, sub.ClassName, sub.Subject, sub.Topic,
		jsonText(sub.Answers), jsonText(sub.Corrections), sub.Structured, sub.CreatedAt)
}

func (r *recordRepo) insert(ctx context.Context, table string, columns []string, values ...any) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(table).
		Columns(columns...).
		Values(values...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *recordRepo) ListUploads(ctx context.Context, opts ListOpts) ([]Upload, error) {
	rows, err := r.list(ctx, tableUploads, uploadColumns, opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.Board, &u.ClassName, &u.Subject, &u.Topic,
			&u.FileName, &u.Size, &u.Excerpt, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *recordRepo) ListMaterials(ctx context.Context, opts ListOpts) ([]Material, error) {
	rows, err := r.list(ctx, tableMaterials, materialColumns, opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var (
			m                      Material
			params, files, outputs string
		)
		if err := rows.Scan(&m.ID, &m.Board, &m.ClassName, &m.Subject, &m.Topic,
			&params, &files, &outputs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		m.Params = json.RawMessage(params)
		m.Outputs = json.RawMessage(outputs)
		if err := json.Unmarshal([]byte(files), &m.Files); err != nil {
			return nil, fmt.Errorf("decode files of material %s: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *recordRepo) ListTests(ctx context.Context, opts ListOpts) ([]Test, error) {
	rows, err := r.list(ctx, tableTests, testColumns, opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *recordRepo) ListSubmissions(ctx context.Context, opts ListOpts) ([]Submission, error) {
	rows, err := r.list(ctx, tableSubmissions, submissionColumns, opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var (
			sub                  Submission
			answers, corrections string
		)
		if err := rows.Scan(&sub.ID, &sub.TestID, &sub.Board, &sub.ClassName, &sub.Subject, &sub.Topic,
			&answers, &corrections, &sub.Structured, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Answers = json.RawMessage(answers)
		sub.Corrections = json.RawMessage(corrections)
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *recordRepo) GetTest(ctx context.Context, id string) (*Test, error) {
	query, args := entsql.Dialect(r.dialect).
		Select(testColumns...).
		From(entsql.Table(tableTests)).
		Where(entsql.EQ("id", id)).
		Limit(1).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query test %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query test %s: %w", id, err)
		}
		return nil, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	return scanTest(rows)
}

func scanTest(rows *sql.Rows) (*Test, error) {
	var (
		t            Test
		params, data string
	)
	if err := rows.Scan(&t.ID, &t.Board, &t.ClassName, &t.Subject, &t.Topic,
		&params, &data, &t.Structured, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan test: %w", err)
	}
	t.Params = json.RawMessage(params)
	t.Data = json.RawMessage(data)
	return &t, nil
}

// list runs a scoped history query, newest first.
func (r *recordRepo) list(ctx context.Context, table string, columns []string, opts ListOpts) (*sql.Rows, error) {
	sel := entsql.Dialect(r.dialect).
		Select(columns...).
		From(entsql.Table(table))
	if preds := opts.predicates(); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("created_at"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return rows, nil
}

func (o ListOpts) predicates() []*entsql.Predicate {
	var preds []*entsql.Predicate
	for _, f := range []struct{ column, value string }{
		{"board", o.Board},
		{"class_name", o.ClassName},
		{"subject", o.Subject},
		{"topic", o.Topic},
	} {
		if f.value != "" {
			preds = append(preds, entsql.EQ(f.column, f.value))
		}
	}
	return preds
}

// jsonText renders a JSON payload for a TEXT or JSONB column. Empty payloads
// are stored as null.
func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

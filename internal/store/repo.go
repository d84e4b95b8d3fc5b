package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a record lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// Scope identifies the curriculum position a record belongs to. Empty fields
// match anything when used as a filter.
type Scope struct {
	Board     string `json:"board"`
	ClassName string `json:"class_name"`
	Subject   string `json:"subject"`
	Topic     string `json:"topic"`
}

// Upload records a file the learner attached to a topic.
type Upload struct {
	Scope
	ID        string    `json:"id"`
	FileName  string    `json:"filename"`
	Size      int64     `json:"file_size"`
	Excerpt   string    `json:"excerpt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Material is a stored run of the study workflow.
type Material struct {
	Scope
	ID        string          `json:"id"`
	Params    json.RawMessage `json:"params"`
	Files     []string        `json:"files"`
	Outputs   json.RawMessage `json:"outputs"`
	CreatedAt time.Time       `json:"created_at"`
}

// Test is a stored run of the test workflow. Data holds the question bank,
// or the raw-response fallback object when Structured is false.
type Test struct {
	Scope
	ID         string          `json:"id"`
	Params     json.RawMessage `json:"test_params"`
	Data       json.RawMessage `json:"test_data"`
	Structured bool            `json:"structured"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Submission is a learner's answers to a test and the grader's corrections.
// Corrections holds the raw-feedback fallback object when Structured is false.
type Submission struct {
	Scope
	ID          string          `json:"id"`
	TestID      string          `json:"test_id,omitempty"`
	Answers     json.RawMessage `json:"user_answers"`
	Corrections json.RawMessage `json:"corrections"`
	Structured  bool            `json:"structured"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListOpts filters history queries. Results are newest first.
type ListOpts struct {
	Scope
	Limit int // 0 = unlimited
}

// RecordRepo is the append-only sink for generated content. Nothing is ever
// updated or deleted.
type RecordRepo interface {
	SaveUpload(ctx context.Context, u *Upload) error
	SaveMaterial(ctx context.Context, m *Material) error
	SaveTest(ctx context.Context, t *Test) error
	SaveSubmission(ctx context.Context, sub *Submission) error

	ListUploads(ctx context.Context, opts ListOpts) ([]Upload, error)
	ListMaterials(ctx context.Context, opts ListOpts) ([]Material, error)
	ListTests(ctx context.Context, opts ListOpts) ([]Test, error)
	ListSubmissions(ctx context.Context, opts ListOpts) ([]Submission, error)

	// GetTest returns ErrNotFound when no test has the given id.
	GetTest(ctx context.Context, id string) (*Test, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match, or prefix when it ends in "*"
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // created_at >= From
	To      time.Time // created_at <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM calls for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns the event with the given id, or nil if none.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

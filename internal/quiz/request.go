package quiz

import (
	"fmt"
	"maps"
	"slices"
)

// MaxCount is the largest item count accepted for any category.
const MaxCount = 30

// StudyCounts are the per-category item counts for study material. The JSON
// keys match what the study prompt embeds.
type StudyCounts struct {
	MCQ    int `json:"mcq"`
	Fill   int `json:"fill"`
	Short  int `json:"short"`
	Medium int `json:"medium"`
	Long   int `json:"long"`
}

// DefaultStudyCounts returns the counts offered when the learner changes nothing.
func DefaultStudyCounts() StudyCounts {
	return StudyCounts{MCQ: 6, Fill: 8, Short: 6, Medium: 4, Long: 2}
}

// StudyRequest asks for study material on one topic.
type StudyRequest struct {
	Board     string      `json:"board"`
	Theme     string      `json:"theme"`
	ClassName string      `json:"class_name"`
	Subject   string      `json:"subject"`
	Counts    StudyCounts `json:"counts"`
}

// BoardOrDefault returns the request's board, or DefaultBoard when unset.
func (r StudyRequest) BoardOrDefault() string {
	if r.Board == "" {
		return DefaultBoard
	}
	return r.Board
}

// Validate rejects negative or oversized counts.
func (r StudyRequest) Validate() error {
	return ValidateCounts(map[string]int{
		"mcq":    r.Counts.MCQ,
		"fill":   r.Counts.Fill,
		"short":  r.Counts.Short,
		"medium": r.Counts.Medium,
		"long":   r.Counts.Long,
	})
}

// TestRequest asks for a graded test on one topic.
type TestRequest struct {
	Board         string `json:"board"`
	Theme         string `json:"theme"`
	ClassName     string `json:"class_name"`
	Subject       string `json:"subject"`
	NumMCQ        int    `json:"num_mcq"`
	NumTrueFalse  int    `json:"num_true_false"`
	NumFillBlanks int    `json:"num_fill_blanks"`
	NumShortQA    int    `json:"num_short_qa"`
	NumMediumQA   int    `json:"num_medium_qa"`
	NumLongQA     int    `json:"num_long_qa"`
}

// DefaultTestRequest returns a request with the default per-category counts.
func DefaultTestRequest(theme, className, subject string) TestRequest {
	return TestRequest{
		Board:         DefaultBoard,
		Theme:         theme,
		ClassName:     className,
		Subject:       subject,
		NumMCQ:        5,
		NumTrueFalse:  5,
		NumFillBlanks: 5,
		NumShortQA:    3,
		NumMediumQA:   2,
		NumLongQA:     1,
	}
}

// BoardOrDefault returns the request's board, or DefaultBoard when unset.
func (r TestRequest) BoardOrDefault() string {
	if r.Board == "" {
		return DefaultBoard
	}
	return r.Board
}

// CountFor returns the requested number of questions for a category.
func (r TestRequest) CountFor(c Category) int {
	switch c {
	case CategoryMCQ:
		return r.NumMCQ
	case CategoryTrueFalse:
		return r.NumTrueFalse
	case CategoryFillBlank:
		return r.NumFillBlanks
	case CategoryShortQA:
		return r.NumShortQA
	case CategoryMediumQA:
		return r.NumMediumQA
	case CategoryLongQA:
		return r.NumLongQA
	}
	return 0
}

// Validate rejects negative or oversized counts.
func (r TestRequest) Validate() error {
	counts := make(map[string]int, len(Categories))
	for _, c := range Categories {
		counts[string(c)] = r.CountFor(c)
	}
	return ValidateCounts(counts)
}

// CountError reports an item count outside [0, MaxCount].
type CountError struct {
	Field string
	Value int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("count %s=%d out of range [0, %d]", e.Field, e.Value, MaxCount)
}

// ValidateCounts checks every named count against [0, MaxCount] and reports
// the first offender in name order.
func ValidateCounts(counts map[string]int) error {
	for _, field := range slices.Sorted(maps.Keys(counts)) {
		v := counts[field]
		if v < 0 || v > MaxCount {
			return &CountError{Field: field, Value: v}
		}
	}
	return nil
}

package quiz

import "encoding/json"

// DefaultBoard is the examination board used when a request leaves it empty.
const DefaultBoard = "ICSE"

// Category identifies one of the six question types.
type Category string

const (
	CategoryMCQ       Category = "mcqs"
	CategoryTrueFalse Category = "true_false"
	CategoryFillBlank Category = "fill_blanks"
	CategoryShortQA   Category = "short_qa"
	CategoryMediumQA  Category = "medium_qa"
	CategoryLongQA    Category = "long_qa"
)

// Categories lists every category in presentation order.
var Categories = []Category{
	CategoryMCQ,
	CategoryTrueFalse,
	CategoryFillBlank,
	CategoryShortQA,
	CategoryMediumQA,
	CategoryLongQA,
}

// DisplayName returns a human-readable label for the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryMCQ:
		return "MCQs"
	case CategoryTrueFalse:
		return "True or False"
	case CategoryFillBlank:
		return "Fill in the Blanks"
	case CategoryShortQA:
		return "Short Q&A (3-4 lines)"
	case CategoryMediumQA:
		return "Medium Q&A (6-7 lines)"
	case CategoryLongQA:
		return "Long Q&A (10-20 lines)"
	default:
		return string(c)
	}
}

// Difficulty is a band used to group questions within a category.
type Difficulty string

const (
	Easy    Difficulty = "EASY"
	Medium  Difficulty = "MEDIUM"
	Hard    Difficulty = "HARD"
	Hardest Difficulty = "HARDEST"
)

// Difficulties lists the bands from easiest to hardest.
var Difficulties = []Difficulty{Easy, Medium, Hard, Hardest}

// Valid reports whether d is one of the four known bands.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard, Hardest:
		return true
	}
	return false
}

// Document is an excerpt of a learner-supplied file.
type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// DocumentContext is the ordered list of excerpts handed to the prompt builder.
type DocumentContext []Document

// Names returns the document names in order.
func (dc DocumentContext) Names() []string {
	names := make([]string, len(dc))
	for i, d := range dc {
		names[i] = d.Name
	}
	return names
}

// MCQ is a four-option multiple choice question.
type MCQ struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// TrueFalse is a statement the learner marks true or false.
type TrueFalse struct {
	Statement   string `json:"statement"`
	Answer      bool   `json:"answer"`
	Explanation string `json:"explanation"`
}

// FillBlank is a sentence with a blank to complete.
type FillBlank struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// QA is a written-answer question used by the short, medium and long categories.
type QA struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Points   float64 `json:"points"`

	// PointsText holds a points value that was not a number, e.g. "2-3".
	PointsText string `json:"points_text,omitempty"`
}

// QuestionBank holds generated questions grouped by category and difficulty.
type QuestionBank struct {
	MCQs       map[Difficulty][]MCQ       `json:"mcqs,omitempty"`
	TrueFalse  map[Difficulty][]TrueFalse `json:"true_false,omitempty"`
	FillBlanks map[Difficulty][]FillBlank `json:"fill_blanks,omitempty"`
	ShortQA    map[Difficulty][]QA        `json:"short_qa,omitempty"`
	MediumQA   map[Difficulty][]QA        `json:"medium_qa,omitempty"`
	LongQA     map[Difficulty][]QA        `json:"long_qa,omitempty"`

	notes []Issue // repairs made while decoding, reported by Check
}

// Count returns the number of questions in a category across all bands.
func (b *QuestionBank) Count(c Category) int {
	n := 0
	for _, d := range b.Bands(c) {
		n += b.CountIn(c, d)
	}
	return n
}

// CountIn returns the number of questions in a category and band.
func (b *QuestionBank) CountIn(c Category, d Difficulty) int {
	switch c {
	case CategoryMCQ:
		return len(b.MCQs[d])
	case CategoryTrueFalse:
		return len(b.TrueFalse[d])
	case CategoryFillBlank:
		return len(b.FillBlanks[d])
	case CategoryShortQA:
		return len(b.ShortQA[d])
	case CategoryMediumQA:
		return len(b.MediumQA[d])
	case CategoryLongQA:
		return len(b.LongQA[d])
	}
	return 0
}

// Total returns the number of questions in the bank.
func (b *QuestionBank) Total() int {
	n := 0
	for _, c := range Categories {
		n += b.Count(c)
	}
	return n
}

// Clear empties every band of a category.
func (b *QuestionBank) Clear(c Category) {
	switch c {
	case CategoryMCQ:
		b.MCQs = emptyBands[MCQ]()
	case CategoryTrueFalse:
		b.TrueFalse = emptyBands[TrueFalse]()
	case CategoryFillBlank:
		b.FillBlanks = emptyBands[FillBlank]()
	case CategoryShortQA:
		b.ShortQA = emptyBands[QA]()
	case CategoryMediumQA:
		b.MediumQA = emptyBands[QA]()
	case CategoryLongQA:
		b.LongQA = emptyBands[QA]()
	}
}

func emptyBands[T any]() map[Difficulty][]T {
	m := make(map[Difficulty][]T, len(Difficulties))
	for _, d := range Difficulties {
		m[d] = []T{}
	}
	return m
}

// Correction is the grader's verdict for one answer.
type Correction struct {
	IsCorrect     bool            `json:"is_correct"`
	Score         json.RawMessage `json:"score,omitempty"`
	Feedback      string          `json:"feedback"`
	CorrectAnswer string          `json:"correct_answer"`
}

// NumericScore returns the score as a number when the model produced one.
func (c Correction) NumericScore() (float64, bool) {
	if len(c.Score) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(c.Score, &f); err != nil {
		return 0, false
	}
	return f, true
}

// AnswerMap maps answer keys (see AnswerKey) to the learner's submitted value.
type AnswerMap map[string]string

// CorrectionMap maps answer keys to corrections.
type CorrectionMap map[string]Correction

// Fallback keys used when model output cannot be parsed.
const (
	RawResponseKey = "raw_response"
	RawFeedbackKey = "raw_feedback"
)

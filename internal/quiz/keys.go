package quiz

import (
	"fmt"
	"strconv"
	"strings"
)

// keyPrefixes maps categories to the short prefix used in answer keys.
var keyPrefixes = map[Category]string{
	CategoryMCQ:       "mcq",
	CategoryTrueFalse: "tf",
	CategoryFillBlank: "fill",
	CategoryShortQA:   "short",
	CategoryMediumQA:  "medium",
	CategoryLongQA:    "long",
}

// AnswerKey identifies one question in a bank: category, band and the
// zero-based position within that band.
type AnswerKey struct {
	Category   Category
	Difficulty Difficulty
	Index      int
}

// String renders the key as "<prefix>_<DIFFICULTY>_<index>", e.g. "mcq_EASY_0".
func (k AnswerKey) String() string {
	return fmt.Sprintf("%s_%s_%d", keyPrefixes[k.Category], k.Difficulty, k.Index)
}

// KeyError reports a malformed answer key.
type KeyError struct {
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid answer key %q: %s", e.Key, e.Reason)
}

// ParseAnswerKey is the inverse of AnswerKey.String.
func ParseAnswerKey(s string) (AnswerKey, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return AnswerKey{}, &KeyError{Key: s, Reason: "want <category>_<difficulty>_<index>"}
	}

	var cat Category
	for c, p := range keyPrefixes {
		if p == parts[0] {
			cat = c
			break
		}
	}
	if cat == "" {
		return AnswerKey{}, &KeyError{Key: s, Reason: fmt.Sprintf("unknown category prefix %q", parts[0])}
	}

	diff := Difficulty(parts[1])
	if !diff.Valid() && !isBandToken(parts[1]) {
		return AnswerKey{}, &KeyError{Key: s, Reason: fmt.Sprintf("unknown difficulty %q", parts[1])}
	}

	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 {
		return AnswerKey{}, &KeyError{Key: s, Reason: fmt.Sprintf("bad index %q", parts[2])}
	}

	return AnswerKey{Category: cat, Difficulty: diff, Index: idx}, nil
}

// Keys enumerates every question in the bank in category, band, index order.
func (b *QuestionBank) Keys() []AnswerKey {
	var keys []AnswerKey
	for _, c := range Categories {
		for _, d := range b.Bands(c) {
			for i := range b.CountIn(c, d) {
				keys = append(keys, AnswerKey{Category: c, Difficulty: d, Index: i})
			}
		}
	}
	return keys
}

// Prompt returns the question text shown to the learner for key k.
func (b *QuestionBank) Prompt(k AnswerKey) (string, bool) {
	switch k.Category {
	case CategoryMCQ:
		if q, ok := at(b.MCQs[k.Difficulty], k.Index); ok {
			return q.Question, true
		}
	case CategoryTrueFalse:
		if q, ok := at(b.TrueFalse[k.Difficulty], k.Index); ok {
			return q.Statement, true
		}
	case CategoryFillBlank:
		if q, ok := at(b.FillBlanks[k.Difficulty], k.Index); ok {
			return q.Question, true
		}
	case CategoryShortQA:
		if q, ok := at(b.ShortQA[k.Difficulty], k.Index); ok {
			return q.Question, true
		}
	case CategoryMediumQA:
		if q, ok := at(b.MediumQA[k.Difficulty], k.Index); ok {
			return q.Question, true
		}
	case CategoryLongQA:
		if q, ok := at(b.LongQA[k.Difficulty], k.Index); ok {
			return q.Question, true
		}
	}
	return "", false
}

// Options returns the selectable answers for key k. Multiple choice questions
// return their options, true/false questions return "True" and "False", and
// written questions return nil.
func (b *QuestionBank) Options(k AnswerKey) []string {
	switch k.Category {
	case CategoryMCQ:
		if q, ok := at(b.MCQs[k.Difficulty], k.Index); ok {
			return q.Options
		}
	case CategoryTrueFalse:
		return []string{"True", "False"}
	}
	return nil
}

// ExpectedAnswer returns the model's reference answer for key k.
func (b *QuestionBank) ExpectedAnswer(k AnswerKey) (string, bool) {
	switch k.Category {
	case CategoryMCQ:
		if q, ok := at(b.MCQs[k.Difficulty], k.Index); ok {
			return q.Answer, true
		}
	case CategoryTrueFalse:
		if q, ok := at(b.TrueFalse[k.Difficulty], k.Index); ok {
			return strconv.FormatBool(q.Answer), true
		}
	case CategoryFillBlank:
		if q, ok := at(b.FillBlanks[k.Difficulty], k.Index); ok {
			return q.Answer, true
		}
	case CategoryShortQA:
		if q, ok := at(b.ShortQA[k.Difficulty], k.Index); ok {
			return q.Answer, true
		}
	case CategoryMediumQA:
		if q, ok := at(b.MediumQA[k.Difficulty], k.Index); ok {
			return q.Answer, true
		}
	case CategoryLongQA:
		if q, ok := at(b.LongQA[k.Difficulty], k.Index); ok {
			return q.Answer, true
		}
	}
	return "", false
}

func at[T any](s []T, i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(s) {
		return zero, false
	}
	return s[i], true
}

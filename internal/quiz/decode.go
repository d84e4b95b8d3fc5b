package quiz

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// parseBoolish extends strconv.ParseBool with the yes/no and
// correct/incorrect spellings models use for verdicts.
func parseBoolish(s string) (bool, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "yes", "y", "correct", "right":
		return true, nil
	case "no", "n", "incorrect", "wrong":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// boolField decodes a JSON boolean or a bool-like string.
func boolField(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, err
	}
	v, err := parseBoolish(s)
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean", s)
	}
	return v, nil
}

// textField renders any JSON scalar as text. Strings are returned as-is,
// numbers and booleans by their literal, null as "". Composite values are
// kept in compact JSON form. The second result is false when the value was
// not already a string.
func textField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return strings.TrimSpace(string(raw)), false
}

// UnmarshalJSON accepts the answer either as a JSON boolean or as a
// "true"/"false" string, which models produce interchangeably.
func (tf *TrueFalse) UnmarshalJSON(data []byte) error {
	type plain TrueFalse
	var raw struct {
		plain
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*tf = TrueFalse(raw.plain)
	if len(raw.Answer) == 0 {
		return nil
	}
	v, err := boolField(raw.Answer)
	if err != nil {
		return fmt.Errorf("true_false answer: %w", err)
	}
	tf.Answer = v
	return nil
}

// UnmarshalJSON accepts a non-string answer or option, such as the option
// number 2, and keeps it as text.
func (q *MCQ) UnmarshalJSON(data []byte) error {
	type plain MCQ
	var raw struct {
		plain
		Options []json.RawMessage `json:"options"`
		Answer  json.RawMessage   `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = MCQ(raw.plain)
	q.Answer, _ = textField(raw.Answer)
	if raw.Options != nil {
		q.Options = make([]string, len(raw.Options))
		for i, o := range raw.Options {
			q.Options[i], _ = textField(o)
		}
	}
	return nil
}

// UnmarshalJSON accepts points as a number or a numeric string. Any other
// string, such as "2-3", is kept in PointsText with Points left at zero.
func (q *QA) UnmarshalJSON(data []byte) error {
	type plain QA
	var raw struct {
		plain
		Points json.RawMessage `json:"points"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = QA(raw.plain)
	if len(raw.Points) == 0 || string(raw.Points) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw.Points, &f); err == nil {
		q.Points = f
		return nil
	}
	s, _ := textField(raw.Points)
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		q.Points = f
		return nil
	}
	q.PointsText = s
	return nil
}

// UnmarshalJSON accepts is_correct as a JSON boolean or a bool-like string.
func (c *Correction) UnmarshalJSON(data []byte) error {
	type plain Correction
	var raw struct {
		plain
		IsCorrect json.RawMessage `json:"is_correct"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Correction(raw.plain)
	if len(raw.IsCorrect) == 0 || string(raw.IsCorrect) == "null" {
		return nil
	}
	v, err := boolField(raw.IsCorrect)
	if err != nil {
		return fmt.Errorf("is_correct: %w", err)
	}
	c.IsCorrect = v
	return nil
}

// unlabelled is the band used for a difficulty label with no letters or digits.
const unlabelled Difficulty = "UNLABELLED"

var bandAliases = map[string]Difficulty{
	"EASY":          Easy,
	"SIMPLE":        Easy,
	"BASIC":         Easy,
	"BEGINNER":      Easy,
	"MEDIUM":        Medium,
	"MODERATE":      Medium,
	"INTERMEDIATE":  Medium,
	"AVERAGE":       Medium,
	"HARD":          Hard,
	"DIFFICULT":     Hard,
	"ADVANCED":      Hard,
	"CHALLENGING":   Hard,
	"HARDEST":       Hardest,
	"VERYHARD":      Hardest,
	"VERYDIFFICULT": Hardest,
	"EXPERT":        Hardest,
}

// ParseDifficulty maps a model-supplied band label onto a Difficulty. Case,
// spaces and punctuation are ignored, and common synonyms map onto the four
// known bands. Anything else is kept as an upper-case band of its own.
func ParseDifficulty(label string) Difficulty {
	token := bandToken(label)
	if d, ok := bandAliases[token]; ok {
		return d
	}
	if token == "" {
		return unlabelled
	}
	return Difficulty(token)
}

func bandToken(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)
}

// isBandToken reports whether s could have been produced by ParseDifficulty.
func isBandToken(s string) bool {
	return s != "" && bandToken(s) == s
}

// DecodeQuestionBank converts a parsed JSON value into a QuestionBank.
// Only a value that is not a JSON object is an error. Within the object,
// unknown top-level keys are ignored, band labels are normalised with
// ParseDifficulty, and malformed bands or items are skipped. Everything that
// was repaired or dropped is reported by Check.
func DecodeQuestionBank(v any) (*QuestionBank, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("question bank must be a JSON object, got %T", v)
	}
	bank := &QuestionBank{}
	bank.MCQs = decodeCategory[MCQ](bank, obj, CategoryMCQ)
	bank.TrueFalse = decodeCategory[TrueFalse](bank, obj, CategoryTrueFalse)
	bank.FillBlanks = decodeCategory[FillBlank](bank, obj, CategoryFillBlank)
	bank.ShortQA = decodeCategory[QA](bank, obj, CategoryShortQA)
	bank.MediumQA = decodeCategory[QA](bank, obj, CategoryMediumQA)
	bank.LongQA = decodeCategory[QA](bank, obj, CategoryLongQA)
	bank.fillMissing()
	return bank, nil
}

func decodeCategory[T any](b *QuestionBank, obj map[string]any, c Category) map[Difficulty][]T {
	val, ok := obj[string(c)]
	if !ok || val == nil {
		return nil
	}
	bands, ok := val.(map[string]any)
	if !ok {
		b.note(string(c), "category is a %s, not an object of bands; skipped", jsonKind(val))
		return nil
	}

	out := make(map[Difficulty][]T, len(bands))
	labels := make([]string, 0, len(bands))
	for l := range bands {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	for _, label := range labels {
		d := ParseDifficulty(label)
		switch {
		case !d.Valid():
			b.note(string(c), "difficulty %q is not a known band, kept as %s", label, d)
		case string(d) != label:
			b.note(string(c), "difficulty %q read as %s", label, d)
		}
		items, ok := bands[label].([]any)
		if !ok {
			b.note(string(c), "band %q is a %s, not a list; skipped", label, jsonKind(bands[label]))
			continue
		}
		for _, item := range items {
			key := AnswerKey{Category: c, Difficulty: d, Index: len(out[d])}.String()
			fields, ok := item.(map[string]any)
			if !ok {
				b.note(key, "item is a %s, not an object; skipped", jsonKind(item))
				continue
			}
			data, err := json.Marshal(fields)
			if err != nil {
				b.note(key, "item could not be re-encoded; skipped")
				continue
			}
			var q T
			if err := json.Unmarshal(data, &q); err != nil {
				b.note(key, "item skipped: %v", err)
				continue
			}
			for _, msg := range repairs(c, fields) {
				b.note(key, "%s", msg)
			}
			out[d] = append(out[d], q)
		}
	}
	return out
}

// repairs describes the fields the item decoders coerced for an item that
// decoded successfully.
func repairs(c Category, fields map[string]any) []string {
	var msgs []string
	switch c {
	case CategoryMCQ:
		if a, ok := fields["answer"]; ok && a != nil {
			if _, isString := a.(string); !isString {
				msgs = append(msgs, fmt.Sprintf("answer %v was a %s, kept as text", a, jsonKind(a)))
			}
		}
		if opts, ok := fields["options"].([]any); ok {
			for i, o := range opts {
				if _, isString := o.(string); !isString && o != nil {
					msgs = append(msgs, fmt.Sprintf("option %d was a %s, kept as text", i+1, jsonKind(o)))
				}
			}
		}
	case CategoryShortQA, CategoryMediumQA, CategoryLongQA:
		if s, ok := fields["points"].(string); ok {
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				msgs = append(msgs, fmt.Sprintf("points %q is not a number, kept as text", s))
			}
		}
	}
	return msgs
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func (b *QuestionBank) note(key, format string, args ...any) {
	b.notes = append(b.notes, Issue{Key: key, Message: fmt.Sprintf(format, args...)})
}

// Bands returns the bands present for a category: the four known bands in
// order, then any other labels the model used, sorted.
func (b *QuestionBank) Bands(c Category) []Difficulty {
	bands := slices.Clone(Difficulties)
	var extra []Difficulty
	for _, d := range b.bandsOf(c) {
		if !d.Valid() {
			extra = append(extra, d)
		}
	}
	slices.Sort(extra)
	return append(bands, extra...)
}

func (b *QuestionBank) bandsOf(c Category) []Difficulty {
	switch c {
	case CategoryMCQ:
		return bandKeys(b.MCQs)
	case CategoryTrueFalse:
		return bandKeys(b.TrueFalse)
	case CategoryFillBlank:
		return bandKeys(b.FillBlanks)
	case CategoryShortQA:
		return bandKeys(b.ShortQA)
	case CategoryMediumQA:
		return bandKeys(b.MediumQA)
	case CategoryLongQA:
		return bandKeys(b.LongQA)
	}
	return nil
}

func bandKeys[T any](m map[Difficulty][]T) []Difficulty {
	out := make([]Difficulty, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	return out
}

// fillMissing makes every category/band present so callers never have to
// distinguish a missing band from an empty one.
func (b *QuestionBank) fillMissing() {
	b.MCQs = fillBands(b.MCQs)
	b.TrueFalse = fillBands(b.TrueFalse)
	b.FillBlanks = fillBands(b.FillBlanks)
	b.ShortQA = fillBands(b.ShortQA)
	b.MediumQA = fillBands(b.MediumQA)
	b.LongQA = fillBands(b.LongQA)
}

func fillBands[T any](m map[Difficulty][]T) map[Difficulty][]T {
	if m == nil {
		m = make(map[Difficulty][]T, len(Difficulties))
	}
	for _, d := range Difficulties {
		if m[d] == nil {
			m[d] = []T{}
		}
	}
	return m
}

// DecodeCorrections converts a parsed JSON value into a CorrectionMap.
func DecodeCorrections(v any) (CorrectionMap, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("corrections must be a JSON object, got %T", v)
	}
	out := make(CorrectionMap, len(obj))
	for key, entry := range obj {
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("re-encode correction %q: %w", key, err)
		}
		var c Correction
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode correction %q: %w", key, err)
		}
		out[key] = c
	}
	return out, nil
}

package quiz

import (
	"fmt"
	"slices"
	"strings"
)

// Issue describes one structural problem found in a generated bank.
type Issue struct {
	Key     string // answer key of the offending question
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Key, i.Message)
}

// Check runs structural sanity checks over a bank. It never fails; problems
// are returned as issues for the caller to log or display.
func Check(b *QuestionBank) []Issue {
	if b == nil {
		return nil
	}
	issues := slices.Clone(b.notes)
	for _, k := range b.Keys() {
		key := k.String()
		text, _ := b.Prompt(k)
		if strings.TrimSpace(text) == "" {
			issues = append(issues, Issue{Key: key, Message: "question text is empty"})
		}
		switch k.Category {
		case CategoryMCQ:
			q := b.MCQs[k.Difficulty][k.Index]
			if len(q.Options) != 4 {
				issues = append(issues, Issue{Key: key, Message: fmt.Sprintf("expected 4 options, got %d", len(q.Options))})
			}
			if !mcqAnswerValid(q) {
				issues = append(issues, Issue{Key: key, Message: fmt.Sprintf("answer %q is not one of the options", q.Answer)})
			}
		case CategoryFillBlank:
			if strings.TrimSpace(b.FillBlanks[k.Difficulty][k.Index].Answer) == "" {
				issues = append(issues, Issue{Key: key, Message: "answer is empty"})
			}
		case CategoryShortQA, CategoryMediumQA, CategoryLongQA:
			q, _ := b.qa(k)
			if q.Points < 0 {
				issues = append(issues, Issue{Key: key, Message: "points must not be negative"})
			}
		}
	}
	return issues
}

// mcqAnswerValid accepts an answer equal to one of the options, or a single
// letter A-D naming one.
func mcqAnswerValid(q MCQ) bool {
	ans := strings.TrimSpace(q.Answer)
	if ans == "" {
		return false
	}
	if slices.ContainsFunc(q.Options, func(o string) bool {
		return strings.EqualFold(strings.TrimSpace(o), ans)
	}) {
		return true
	}
	letter := strings.ToUpper(strings.TrimSuffix(strings.TrimSuffix(ans, ")"), "."))
	if len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'D' {
		return int(letter[0]-'A') < len(q.Options)
	}
	// "B) Newton" style answers carry the option text after the letter.
	for _, o := range q.Options {
		if strings.HasSuffix(ans, strings.TrimSpace(o)) && strings.TrimSpace(o) != "" {
			return true
		}
	}
	return false
}

func (b *QuestionBank) qa(k AnswerKey) (QA, bool) {
	switch k.Category {
	case CategoryShortQA:
		return at(b.ShortQA[k.Difficulty], k.Index)
	case CategoryMediumQA:
		return at(b.MediumQA[k.Difficulty], k.Index)
	case CategoryLongQA:
		return at(b.LongQA[k.Difficulty], k.Index)
	}
	return QA{}, false
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/abhisek/eduai/internal/grading"
	"github.com/abhisek/eduai/internal/quiz"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("─", max(len([]rune(title)), 20)))
}

func printMaterial(w io.Writer, m *quiz.StudyMaterial) {
	for i, s := range quiz.Sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading(w, s.Title())
		fmt.Fprintln(w, strings.TrimSpace(m.Get(s)))
	}
}

// printBank lists every question with its answer key. withAnswers adds the
// reference answers.
func printBank(w io.Writer, b *quiz.QuestionBank, withAnswers bool) {
	var last quiz.Category
	for _, k := range b.Keys() {
		if k.Category != last {
			if last != "" {
				fmt.Fprintln(w)
			}
			heading(w, k.Category.DisplayName())
			last = k.Category
		}
		prompt, _ := b.Prompt(k)
		fmt.Fprintf(w, "[%s] %s\n", k, prompt)
		for i, opt := range b.Options(k) {
			fmt.Fprintf(w, "    %c) %s\n", 'A'+i, opt)
		}
		if withAnswers {
			if ans, ok := b.ExpectedAnswer(k); ok {
				fmt.Fprintf(w, "    answer: %s\n", ans)
			}
		}
	}
}

func printEvaluation(w io.Writer, b *quiz.QuestionBank, answers quiz.AnswerMap, ev *grading.Evaluation) {
	if !ev.Structured() {
		heading(w, "Feedback")
		fmt.Fprintln(w, ev.Raw)
		return
	}
	var keys []string
	if b != nil {
		for _, k := range b.Keys() {
			if _, ok := ev.Corrections[k.String()]; ok {
				keys = append(keys, k.String())
			}
		}
	}
	if len(keys) != len(ev.Corrections) {
		keys = keys[:0]
		for k := range ev.Corrections {
			keys = append(keys, k)
		}
		slices.Sort(keys)
	}

	for _, key := range keys {
		c := ev.Corrections[key]
		mark := "✗"
		if c.IsCorrect {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s [%s] your answer: %s\n", mark, key, answers[key])
		if !c.IsCorrect && c.CorrectAnswer != "" {
			fmt.Fprintf(w, "    correct: %s\n", c.CorrectAnswer)
		}
		if v, ok := c.NumericScore(); ok {
			fmt.Fprintf(w, "    score: %g\n", v)
		}
		if c.Feedback != "" {
			fmt.Fprintf(w, "    %s\n", c.Feedback)
		}
	}

	sum := ev.Summary()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d of %d correct", sum.Correct, sum.Graded)
	if sum.Scored > 0 {
		fmt.Fprintf(w, ", score %g", sum.Score)
	}
	fmt.Fprintln(w)
}

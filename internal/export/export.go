// Package export writes generated tests and their corrections to Excel
// workbooks.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/eduai/internal/quiz"
)

// Workbook is the content of one export.
type Workbook struct {
	Title       string // written to the summary sheet
	Bank        *quiz.QuestionBank
	Answers     quiz.AnswerMap     // optional
	Corrections quiz.CorrectionMap // optional
}

const summarySheet = "Summary"

var questionHeader = []any{"Key", "Difficulty", "Question", "Options", "Answer", "Explanation / Points"}

var correctionHeader = []any{"Key", "Your Answer", "Correct", "Score", "Correct Answer", "Feedback"}

// Write renders wb as an .xlsx document: a summary sheet, one sheet per
// non-empty category and, when corrections are present, a corrections sheet.
func Write(w io.Writer, wb Workbook) error {
	if wb.Bank == nil {
		return fmt.Errorf("export: no question bank")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: create style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := writeSummary(f, wb, bold); err != nil {
		return err
	}

	for _, c := range quiz.Categories {
		if wb.Bank.Count(c) == 0 {
			continue
		}
		if err := writeCategory(f, wb.Bank, c, bold); err != nil {
			return err
		}
	}

	if len(wb.Corrections) > 0 {
		if err := writeCorrections(f, wb, bold); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// SheetName returns the sheet holding category c.
func SheetName(c quiz.Category) string {
	return string(c)
}

func writeSummary(f *excelize.File, wb Workbook, bold int) error {
	rows := [][]any{
		{"Test", wb.Title},
		{"Questions", wb.Bank.Total()},
	}
	for _, c := range quiz.Categories {
		rows = append(rows, []any{c.DisplayName(), wb.Bank.Count(c)})
	}
	if len(wb.Corrections) > 0 {
		correct, score := 0, 0.0
		for _, c := range wb.Corrections {
			if c.IsCorrect {
				correct++
			}
			if v, ok := c.NumericScore(); ok {
				score += v
			}
		}
		rows = append(rows, []any{"Correct", correct}, []any{"Score", score})
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return err
	}
	return f.SetColStyle(summarySheet, "A", bold)
}

func writeCategory(f *excelize.File, b *quiz.QuestionBank, c quiz.Category, bold int) error {
	sheet := SheetName(c)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("export: new sheet %s: %w", sheet, err)
	}

	rows := [][]any{questionHeader}
	for _, k := range b.Keys() {
		if k.Category != c {
			continue
		}
		text, _ := b.Prompt(k)
		answer, _ := b.ExpectedAnswer(k)
		rows = append(rows, []any{
			k.String(),
			string(k.Difficulty),
			text,
			strings.Join(b.Options(k), "\n"),
			answer,
			detail(b, k),
		})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return f.SetColWidth(sheet, "C", "C", 60)
}

func writeCorrections(f *excelize.File, wb Workbook, bold int) error {
	const sheet = "Corrections"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("export: new sheet %s: %w", sheet, err)
	}

	rows := [][]any{correctionHeader}
	seen := make(map[string]bool, len(wb.Corrections))
	add := func(key string, c quiz.Correction) {
		score := string(c.Score)
		if v, ok := c.NumericScore(); ok {
			score = strconv.FormatFloat(v, 'f', -1, 64)
		}
		rows = append(rows, []any{key, wb.Answers[key], c.IsCorrect, score, c.CorrectAnswer, c.Feedback})
	}
	// Bank order first, then anything the grader added.
	for _, k := range wb.Bank.Keys() {
		key := k.String()
		if c, ok := wb.Corrections[key]; ok {
			add(key, c)
			seen[key] = true
		}
	}
	for key, c := range wb.Corrections {
		if !seen[key] {
			add(key, c)
		}
	}

	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return f.SetRowStyle(sheet, 1, 1, bold)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func detail(b *quiz.QuestionBank, k quiz.AnswerKey) string {
	d, i := k.Difficulty, k.Index
	switch k.Category {
	case quiz.CategoryMCQ:
		return b.MCQs[d][i].Explanation
	case quiz.CategoryTrueFalse:
		return b.TrueFalse[d][i].Explanation
	case quiz.CategoryFillBlank:
		return b.FillBlanks[d][i].Explanation
	case quiz.CategoryShortQA:
		return points(b.ShortQA[d][i])
	case quiz.CategoryMediumQA:
		return points(b.MediumQA[d][i])
	case quiz.CategoryLongQA:
		return points(b.LongQA[d][i])
	}
	return ""
}

func points(q quiz.QA) string {
	if q.PointsText != "" {
		return q.PointsText
	}
	return strconv.FormatFloat(q.Points, 'f', -1, 64)
}

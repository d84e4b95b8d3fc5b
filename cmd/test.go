package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/export"
	"github.com/abhisek/eduai/internal/quiz"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Generate a practice test for a topic",
	Example: `  eduai test --class "Class 8" --subject Physics --topic 4
  eduai test --class "Class 8" --subject Physics -t 4 --num-long 0 --xlsx friction.xlsx`,
	RunE: runTest,
}

func init() {
	addScopeFlags(testCmd, quiz.DefaultBoard)
	f := testCmd.Flags()
	d := quiz.DefaultTestRequest("", "", "")
	f.Int("num-mcq", d.NumMCQ, "Multiple choice questions")
	f.Int("num-true-false", d.NumTrueFalse, "True/false questions")
	f.Int("num-fill-blanks", d.NumFillBlanks, "Fill in the blank questions")
	f.Int("num-short-qa", d.NumShortQA, "Short answer questions")
	f.Int("num-medium-qa", d.NumMediumQA, "Medium answer questions")
	f.Int("num-long-qa", d.NumLongQA, "Long answer questions")
	f.Bool("answers", false, "Include reference answers in the text output")
	f.Bool("json", false, "Print the test as JSON")
	f.String("xlsx", "", "Also write the test to this .xlsx file")
}

func runTest(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, true, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	cat, err := e.catalog()
	if err != nil {
		return err
	}
	scope, err := resolveScope(cmd, cat)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	req := quiz.TestRequest{
		Board:     scope.Board,
		Theme:     scope.Topic,
		ClassName: scope.ClassName,
		Subject:   scope.Subject,
	}
	req.NumMCQ, _ = f.GetInt("num-mcq")
	req.NumTrueFalse, _ = f.GetInt("num-true-false")
	req.NumFillBlanks, _ = f.GetInt("num-fill-blanks")
	req.NumShortQA, _ = f.GetInt("num-short-qa")
	req.NumMediumQA, _ = f.GetInt("num-medium-qa")
	req.NumLongQA, _ = f.GetInt("num-long-qa")

	out, err := e.svc.GenerateTest(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("generate test: %w", err)
	}
	for _, w := range out.Warnings {
		e.logger.Warn("test output", "warning", w)
	}

	w := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	if asJSON, _ := f.GetBool("json"); asJSON {
		if err := writeJSON(w, map[string]any{"test_id": out.TestID, "test_data": out.Data()}); err != nil {
			return err
		}
	} else if out.Bank == nil {
		fmt.Fprintln(stderr, "The response could not be read as a question bank; showing it as is.")
		fmt.Fprintln(w, out.Raw)
	} else {
		withAnswers, _ := f.GetBool("answers")
		printBank(w, out.Bank, withAnswers)
	}

	if path, _ := f.GetString("xlsx"); path != "" {
		if out.Bank == nil {
			return errors.New("cannot export: test has no question bank")
		}
		if err := writeWorkbook(path, export.Workbook{Title: scope.Topic, Bank: out.Bank}); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote %s\n", path)
	}
	if out.TestID != "" {
		fmt.Fprintf(stderr, "\nSaved as %s. Grade with: eduai grade %s --answers answers.json\n", out.TestID, out.TestID)
	}
	return nil
}

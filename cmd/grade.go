package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/export"
	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/service"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <test-id>",
	Short: "Grade answers to a stored test",
	Long: `Grade answers to a stored test. Answers are a JSON object mapping answer
keys, as printed by "eduai test", to the submitted values:

  {"mcq_EASY_0": "Newton", "tf_MEDIUM_1": "false", "short_HARD_0": "..."}`,
	Args: cobra.ExactArgs(1),
	RunE: runGrade,
}

func init() {
	f := gradeCmd.Flags()
	f.StringP("answers", "a", "-", "JSON answers file (- for stdin)")
	f.Bool("json", false, "Print the corrections as JSON")
	f.String("xlsx", "", "Also write the test and corrections to this .xlsx file")
}

func readAnswers(cmd *cobra.Command, path string) (quiz.AnswerMap, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open answers: %w", err)
		}
		defer f.Close()
		r = f
	}
	var answers quiz.AnswerMap
	if err := json.NewDecoder(r).Decode(&answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	for key := range answers {
		if _, err := quiz.ParseAnswerKey(key); err != nil {
			return nil, err
		}
	}
	return answers, nil
}

func runGrade(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	path, _ := f.GetString("answers")
	answers, err := readAnswers(cmd, path)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd, true, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	test, err := e.svc.LoadTest(ctx, args[0])
	if err != nil {
		return err
	}
	if test.Bank == nil {
		return fmt.Errorf("test %s: %w", args[0], service.ErrUngradable)
	}

	out, err := e.svc.SubmitTest(ctx, service.Submission{
		TestID:  test.TestID,
		Request: test.Request,
		Bank:    test.Bank,
		Answers: answers,
	})
	if err != nil {
		return fmt.Errorf("grade answers: %w", err)
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := f.GetBool("json"); asJSON {
		if err := writeJSON(w, map[string]any{"submission_id": out.SubmissionID, "corrections": out.Data()}); err != nil {
			return err
		}
	} else {
		printEvaluation(w, test.Bank, answers, out.Evaluation)
	}

	if xlsx, _ := f.GetString("xlsx"); xlsx != "" {
		wb := export.Workbook{Title: test.Request.Theme, Bank: test.Bank, Answers: answers, Corrections: out.Corrections}
		if err := writeWorkbook(xlsx, wb); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", xlsx)
	}
	return nil
}

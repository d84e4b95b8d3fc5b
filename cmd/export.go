package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/export"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <test-id>",
	Short: "Export a stored test to an Excel workbook",
	Long: "Export a stored test to an Excel workbook with one sheet per question " +
		"category. The newest graded submission for the test is included unless " +
		"--no-corrections is given.",
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringP("output", "o", "", "Output .xlsx path (default <test-id>.xlsx)")
	f.Bool("no-corrections", false, "Export the questions only")
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, false, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	// Loading needs only the store.
	svc := service.New(nil, e.store.Records(), service.Options{Logger: e.logger})
	test, err := svc.LoadTest(ctx, args[0])
	if err != nil {
		return err
	}
	if test.Bank == nil {
		return fmt.Errorf("test %s: %w", args[0], service.ErrUngradable)
	}

	wb := export.Workbook{Title: test.Request.Theme, Bank: test.Bank}
	if skip, _ := cmd.Flags().GetBool("no-corrections"); !skip {
		sub, err := latestSubmission(cmd, e.store.Records(), test)
		if err != nil {
			return err
		}
		if sub != nil {
			if err := json.Unmarshal(sub.Answers, &wb.Answers); err != nil {
				return fmt.Errorf("decode answers of submission %s: %w", sub.ID, err)
			}
			if err := json.Unmarshal(sub.Corrections, &wb.Corrections); err != nil {
				return fmt.Errorf("decode corrections of submission %s: %w", sub.ID, err)
			}
		}
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = args[0] + ".xlsx"
	}
	if err := writeWorkbook(path, wb); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

// latestSubmission returns the newest structured submission for test, or
// nil when there is none.
func latestSubmission(cmd *cobra.Command, repo store.RecordRepo, test *service.TestOutcome) (*store.Submission, error) {
	r := test.Request
	subs, err := repo.ListSubmissions(cmd.Context(), store.ListOpts{Scope: store.Scope{
		Board: r.BoardOrDefault(), ClassName: r.ClassName, Subject: r.Subject, Topic: r.Theme,
	}})
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	for _, s := range subs {
		if s.TestID == test.TestID && s.Structured {
			return &s, nil
		}
	}
	return nil, nil
}

func writeWorkbook(path string, wb export.Workbook) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.Write(f, wb)
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/quiz"
	"github.com/abhisek/eduai/internal/workflow"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Generate study material for a topic",
	Example: `  eduai study --class "Class 8" --subject Physics --topic 3
  eduai study --class "Class 8" --subject Physics -t friction --file notes.pdf --json`,
	RunE: runStudy,
}

func init() {
	addScopeFlags(studyCmd, quiz.DefaultBoard)
	f := studyCmd.Flags()
	defaults := quiz.DefaultStudyCounts()
	f.Int("mcq", defaults.MCQ, "Number of multiple choice questions")
	f.Int("fill", defaults.Fill, "Number of fill in the blank questions")
	f.Int("short", defaults.Short, "Number of short answer questions")
	f.Int("medium", defaults.Medium, "Number of medium answer questions")
	f.Int("long", defaults.Long, "Number of long answer questions")
	f.StringSlice("file", nil, "Reference document to include (repeatable)")
	f.Bool("json", false, "Print the material as JSON")
}

func runStudy(cmd *cobra.Command, _ []string) error {
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
	var counts quiz.StudyCounts
	counts.MCQ, _ = f.GetInt("mcq")
	counts.Fill, _ = f.GetInt("fill")
	counts.Short, _ = f.GetInt("short")
	counts.Medium, _ = f.GetInt("medium")
	counts.Long, _ = f.GetInt("long")
	req := quiz.StudyRequest{
		Board:     scope.Board,
		Theme:     scope.Topic,
		ClassName: scope.ClassName,
		Subject:   scope.Subject,
		Counts:    counts,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	files, _ := f.GetStringSlice("file")
	var dc quiz.DocumentContext
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		doc, err := e.svc.RecordUpload(ctx, scope, filepath.Base(path), data)
		if err != nil {
			return err
		}
		if doc != nil {
			dc = append(dc, *doc)
		}
	}

	stderr := cmd.ErrOrStderr()
	ctx = workflow.WithStepFunc(ctx, func(s quiz.Section, i, total int) {
		fmt.Fprintf(stderr, "[%d/%d] %s\n", i+1, total, s.Title())
	})
	out, err := e.svc.GenerateStudy(ctx, req, dc)
	if err != nil {
		return fmt.Errorf("generate study material: %w", err)
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := f.GetBool("json"); asJSON {
		return writeJSON(w, map[string]any{"id": out.RecordID, "outputs": out.Material})
	}
	printMaterial(w, out.Material)
	if out.RecordID != "" {
		fmt.Fprintf(stderr, "\nSaved as %s\n", out.RecordID)
	}
	return nil
}

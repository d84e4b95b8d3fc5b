package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
)

var historyCmd = &cobra.Command{
	Use:       "history [materials|tests|submissions|uploads]",
	Short:     "List stored study material, tests, submissions or uploads",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"materials", "tests", "submissions", "uploads"},
	RunE:      runHistory,
}

func init() {
	addScopeFlags(historyCmd, "")
	f := historyCmd.Flags()
	f.IntP("limit", "n", 20, "Number of records to show (0 = all)")
	f.Bool("json", false, "Print the records as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	kind := service.HistoryTests
	if len(args) == 1 {
		kind = service.HistoryKind(args[0])
	}
	limit, _ := cmd.Flags().GetInt("limit")

	e, err := openEnv(cmd, false, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	svc := service.New(nil, e.store.Records(), service.Options{Logger: e.logger})
	records, err := svc.History(cmd.Context(), kind, store.ListOpts{Scope: scopeFlags(cmd), Limit: limit})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(w, records)
	}
	return printHistory(w, records)
}

const timeLayout = "2006-01-02 15:04"

func scopeLine(s store.Scope) string {
	return strings.Join([]string{s.Board, s.ClassName, s.Subject, s.Topic}, " / ")
}

func printHistory(out io.Writer, records any) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	n := 0
	switch rs := records.(type) {
	case []store.Material:
		fmt.Fprintln(w, "ID\tCREATED\tSCOPE\tFILES")
		for _, r := range rs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format(timeLayout), scopeLine(r.Scope), strings.Join(r.Files, ", "))
		}
		n = len(rs)
	case []store.Test:
		fmt.Fprintln(w, "ID\tCREATED\tSCOPE\tSTRUCTURED")
		for _, r := range rs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", r.ID, r.CreatedAt.Local().Format(timeLayout), scopeLine(r.Scope), r.Structured)
		}
		n = len(rs)
	case []store.Submission:
		fmt.Fprintln(w, "ID\tCREATED\tSCOPE\tTEST\tSTRUCTURED")
		for _, r := range rs {
			test := r.TestID
			if test == "" {
				test = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", r.ID, r.CreatedAt.Local().Format(timeLayout), scopeLine(r.Scope), test, r.Structured)
		}
		n = len(rs)
	case []store.Upload:
		fmt.Fprintln(w, "ID\tCREATED\tSCOPE\tFILE\tBYTES")
		for _, r := range rs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.CreatedAt.Local().Format(timeLayout), scopeLine(r.Scope), r.FileName, r.Size)
		}
		n = len(rs)
	}
	if n == 0 {
		_, err := fmt.Fprintln(out, "No records found.")
		return err
	}
	return w.Flush()
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls and their cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.Before, _ = cmd.Flags().GetInt64("before")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(ctx, opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), events)
			}
			return printEvents(cmd.OutOrStdout(), events)
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid event id %q: %w", args[0], err)
		}
		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			ev, err := repo.GetLLMEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if ev == nil {
				return fmt.Errorf("event %d not found", id)
			}
			printEvent(cmd.OutOrStdout(), ev)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage by purpose and estimated cost by model",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			byPurpose, err := repo.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			byModel, err := repo.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"purposes": byPurpose, "models": byModel})
			}
			return printUsage(cmd.OutOrStdout(), byPurpose, byModel)
		})
	},
}

// withEvents opens the store without an LLM provider and runs fn against
// its event log.
func withEvents(cmd *cobra.Command, fn func(context.Context, store.EventRepo) error) error {
	e, err := openEnv(cmd, false, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(cmd.Context(), e.store.EventRepo())
}

func printEvents(out io.Writer, events []store.LLMEvent) error {
	if len(events) == 0 {
		fmt.Fprintln(out, "No LLM calls recorded.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPURPOSE\tMODEL\tIN\tOUT\tMS\tOK")
	for _, ev := range events {
		ok := "✓"
		if !ev.Success {
			ok = "✗"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			ev.ID, ev.Timestamp.Local().Format(timeLayout),
			truncate(ev.Purpose, 24), truncate(ev.Model, 32),
			ev.InputTokens, ev.OutputTokens, ev.LatencyMs, ok)
	}
	return w.Flush()
}

func printEvent(w io.Writer, ev *store.LLMEvent) {
	fields := [][2]string{
		{"ID", strconv.FormatInt(ev.ID, 10)},
		{"Time", ev.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Provider", ev.Provider},
		{"Model", ev.Model},
		{"Purpose", ev.Purpose},
		{"Tokens", fmt.Sprintf("%d in / %d out", ev.InputTokens, ev.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", ev.LatencyMs)},
		{"Success", strconv.FormatBool(ev.Success)},
	}
	if ev.ErrorMessage != "" {
		fields = append(fields, [2]string{"Error", ev.ErrorMessage})
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-10s %s\n", f[0]+":", f[1])
	}

	for _, part := range [][2]string{{"Request", ev.RequestBody}, {"Response", ev.ResponseBody}} {
		fmt.Fprintln(w)
		heading(w, part[0])
		if part[1] == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, part[1])
	}
}

func printUsage(out io.Writer, byPurpose []store.PurposeUsage, byModel []store.ModelUsage) error {
	if len(byPurpose) == 0 {
		fmt.Fprintln(out, "No LLM usage recorded yet.")
		return nil
	}

	heading(out, "Usage by purpose")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PURPOSE\tCALLS\tINPUT\tOUTPUT\tTOTAL\tAVG MS\t")
	var calls, in, outTok int
	for _, u := range byPurpose {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t\n",
			u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls, in, outTok = calls+u.Calls, in+u.InputTokens, outTok+u.OutputTokens
	}
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t%d\t\t\n", calls, in, outTok, in+outTok)
	if err := w.Flush(); err != nil {
		return err
	}
	if len(byModel) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	heading(out, "Estimated cost (USD)")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "MODEL\tCALLS\tINPUT\tOUTPUT\tCOST\t")
	var total float64
	var unpriced []string
	for _, u := range byModel {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t\n", truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%s\t\t\t\t%s\t\n", label, formatCost(total))
	if err := w.Flush(); err != nil {
		return err
	}
	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
	return nil
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", `Filter by purpose (e.g. test-gen, grading, "study-*")`)
	llmListCmd.Flags().Int64("before", 0, "Only events with an ID below this one (for paging)")
	llmListCmd.Flags().Bool("json", false, "Print events as JSON")
	llmStatsCmd.Flags().Bool("json", false, "Print usage as JSON")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

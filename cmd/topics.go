package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/catalog"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the boards, classes, subjects and topics in the catalogue",
	RunE:  runTopics,
}

func init() {
	topicsCmd.Flags().String("board", "", "Only list this board")
	topicsCmd.Flags().Bool("json", false, "Print the catalogue as JSON")
}

func runTopics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, closeLog, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cat := catalog.Default()
	if cfg.CatalogDir != "" {
		if cat, err = catalog.Load(cfg.CatalogDir); err != nil {
			return fmt.Errorf("load catalogue: %w", err)
		}
	}

	boards := cat.Boards()
	if name, _ := cmd.Flags().GetString("board"); name != "" {
		b, ok := cat.Board(name)
		if !ok {
			return fmt.Errorf("unknown board %q", name)
		}
		boards = []catalog.Board{b}
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(w, boards)
	}
	for _, b := range boards {
		fmt.Fprintln(w, b.DisplayName())
		for _, c := range b.Classes {
			fmt.Fprintf(w, "  %s\n", c.Name)
			for _, s := range c.Subjects {
				fmt.Fprintf(w, "    %s\n", s.Name)
				if len(s.Topics) == 0 {
					fmt.Fprintln(w, "      (no topics yet)")
				}
				for _, t := range s.Topics {
					fmt.Fprintf(w, "      %s\n", t.Name)
				}
			}
		}
	}
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI. Logs
// are discarded unless --log-file is set so they do not corrupt the screen.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd, false, io.Discard)
	if err != nil {
		return err
	}
	defer e.Close()

	cat, err := e.catalog()
	if err != nil {
		return err
	}
	opts := app.Options{Catalog: cat}

	if err := e.buildService(cmd.Context()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Generation will be unavailable.")
	} else {
		opts.Service = e.svc
		opts.Model = e.completer.ModelID()
	}

	return app.Run(cmd.Context(), opts)
}

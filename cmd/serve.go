package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Time allowed for in-flight requests on shutdown")
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, true, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	cat, err := e.catalog()
	if err != nil {
		return err
	}

	h := server.New(e.svc, cat, e.store.Ping, e.logger)
	srv := &http.Server{
		Addr:              e.cfg.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		// Study generation makes seven sequential model calls.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("server listening", "addr", srv.Addr, "model", e.completer.ModelID())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	timeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

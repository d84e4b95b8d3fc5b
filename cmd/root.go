package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduai/internal/catalog"
	"github.com/abhisek/eduai/internal/config"
	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/service"
	"github.com/abhisek/eduai/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "eduai",
	Short: "AI study material and practice tests",
	Long: "eduai generates study material and practice tests for a syllabus topic " +
		"with a large language model, and grades the answers.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("db", "", "SQLite database path or postgres:// DSN (overrides EDUAI_DB env var)")
	f.String("catalog-dir", "", "Directory of YAML files extending the topic catalogue")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	f.String("log-file", "", "Write logs to this file instead of stderr")
	f.String("llm-provider", "", "LLM provider (openai, anthropic, gemini, openrouter, mock)")
	f.String("llm-model", "", "Model id for the selected provider")
	f.String("llm-key", "", "API key for the selected provider")
	f.String("llm-base-url", "", "Base URL for OpenAI-compatible providers")
	f.Float64("llm-temperature", 0.7, "Sampling temperature")
	f.Int("llm-max-tokens", 0, "Maximum output tokens per call (0 = provider default)")
	f.Duration("llm-timeout", 0, "Timeout per completion call (0 = default)")
	f.Int("llm-retries", 0, "Attempts per completion call (0 = default)")
	f.Bool("parallel", false, "Generate study sections concurrently")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves flags, environment and config file for cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.New(cmd.Flags()))
	if err != nil {
		return config.Config{}, err
	}
	if !store.IsPostgresDSN(cfg.DB) {
		if err := store.EnsureDir(cfg.DB); err != nil {
			return config.Config{}, fmt.Errorf("resolve database path: %w", err)
		}
	}
	return cfg, nil
}

// setupLogging installs the configured slog handler as the default logger.
// fallback receives logs when no log file is set. The returned function
// closes the log file, if any.
func setupLogging(cfg config.Config, fallback io.Writer) (*slog.Logger, func() error, error) {
	logger, closeFn, err := cfg.Log.NewLogger(fallback)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// env is what most commands need: configuration, a logger, the store and
// the service built on top of them.
type env struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *store.Store
	completer *llm.Completer
	svc       *service.Service
	closers   []func() error
}

// openEnv loads configuration and opens the store. With withLLM the
// completer and service are built as well, and a missing provider is an
// error.
func openEnv(cmd *cobra.Command, withLLM bool, logOut io.Writer) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := setupLogging(cfg, logOut)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	ctx := cmd.Context()
	st, err := store.OpenContext(ctx, cfg.DB)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st.Close)

	if withLLM {
		if err := e.buildService(ctx); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) buildService(ctx context.Context) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	c, err := llm.NewCompleter(ctx, e.cfg.LLM, e.store.EventRepo())
	if err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}
	e.completer = c
	e.svc = service.New(c, e.store.Records(), service.Options{
		ParallelStudy: e.cfg.Generation.ParallelStudy,
		Logger:        e.logger,
	})
	e.logger.Debug("LLM provider ready", "provider", e.cfg.LLM.Provider, "model", c.ModelID())
	return nil
}

// catalog loads the embedded catalogue, extended by --catalog-dir.
func (e *env) catalog() (*catalog.Catalog, error) {
	if e.cfg.CatalogDir == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(e.cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	return cat, nil
}

// Close releases everything openEnv acquired, in reverse order.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			fmt.Fprintln(os.Stderr, "close:", err)
		}
	}
}

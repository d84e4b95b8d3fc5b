// Package config assembles runtime configuration from flags, environment
// and an optional eduai.yaml file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/eduai/internal/llm"
	"github.com/abhisek/eduai/internal/store"
)

// EnvPrefix is prepended to every environment variable, e.g. EDUAI_DB.
const EnvPrefix = "EDUAI"

// Config is the resolved configuration of one command run.
type Config struct {
	// DB is a SQLite path or a postgres:// DSN.
	DB string

	// Addr is the HTTP listen address for serve.
	Addr string

	// CatalogDir optionally holds YAML files that extend the topic catalogue.
	CatalogDir string

	Log        LogConfig
	LLM        llm.Config
	Generation GenerationConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	File   string // empty = stderr
}

// GenerationConfig tunes the workflows.
type GenerationConfig struct {
	ParallelStudy bool
}

// New returns a viper instance bound to flags and the EDUAI_ environment,
// with eduai.yaml read from the working directory, ~/.config/eduai or
// /etc/eduai when present.
func New(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	if flags != nil {
		_ = v.BindPFlags(flags)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("eduai")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/eduai")
	v.AddConfigPath("/etc/eduai")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}
	return v
}

// Load resolves a Config from v. LLM settings start from the EDUAI_*
// provider variables; when no provider is configured, well-known API key
// variables (OPENAI_API_KEY, ...) are probed.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DB:         v.GetString("db"),
		Addr:       v.GetString("addr"),
		CatalogDir: v.GetString("catalog-dir"),
		Log: LogConfig{
			Level:  v.GetString("log-level"),
			Format: v.GetString("log-format"),
			File:   v.GetString("log-file"),
		},
		Generation: GenerationConfig{
			ParallelStudy: v.GetBool("parallel"),
		},
	}

	if cfg.DB == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return Config{}, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.DB = p
	}

	cfg.LLM = llm.ConfigFromEnv()
	if !hasProviderSetting(v) && !llmKeyConfigured(cfg.LLM) {
		if discovered, ok := llm.DiscoverConfig(); ok {
			slog.Debug("LLM provider discovered from environment", "provider", discovered.Provider)
			cfg.LLM = discovered
		}
	}
	applyLLMOverrides(v, &cfg.LLM)

	return cfg, nil
}

func hasProviderSetting(v *viper.Viper) bool {
	return v.IsSet("llm-provider") && v.GetString("llm-provider") != ""
}

func llmKeyConfigured(c llm.Config) bool {
	return c.OpenAI.APIKey != "" || c.Anthropic.APIKey != "" ||
		c.Gemini.APIKey != "" || c.OpenRouter.APIKey != ""
}

// applyLLMOverrides applies the generic llm-* keys on top of c. Model, key
// and base URL apply to the selected provider.
func applyLLMOverrides(v *viper.Viper, c *llm.Config) {
	if p := v.GetString("llm-provider"); p != "" {
		c.Provider = p
	}
	model := v.GetString("llm-model")
	key := v.GetString("llm-key")
	baseURL := v.GetString("llm-base-url")

	set := func(dst *string, val string) {
		if val != "" {
			*dst = val
		}
	}
	switch c.Provider {
	case "openai":
		set(&c.OpenAI.Model, model)
		set(&c.OpenAI.APIKey, key)
		set(&c.OpenAI.BaseURL, baseURL)
	case "anthropic":
		set(&c.Anthropic.Model, model)
		set(&c.Anthropic.APIKey, key)
		set(&c.Anthropic.BaseURL, baseURL)
	case "gemini":
		set(&c.Gemini.Model, model)
		set(&c.Gemini.APIKey, key)
	case "openrouter":
		set(&c.OpenRouter.Model, model)
		set(&c.OpenRouter.APIKey, key)
		set(&c.OpenRouter.BaseURL, baseURL)
	}

	if v.IsSet("llm-temperature") {
		c.Temperature = v.GetFloat64("llm-temperature")
	}
	if v.IsSet("llm-max-tokens") {
		c.MaxTokens = v.GetInt("llm-max-tokens")
	}
	if d := v.GetDuration("llm-timeout"); d > 0 {
		c.Timeout = d
	}
	if n := v.GetInt("llm-retries"); n > 0 {
		c.Retry.MaxAttempts = n
	}
}

// Validate checks the parts every command needs.
func (c Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.LLM.Timeout < 0 || c.LLM.Timeout > 30*time.Minute {
		return fmt.Errorf("llm timeout %s out of range", c.LLM.Timeout)
	}
	return nil
}

// SlogLevel parses the configured log level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the configured handler writing to the log file, or to
// fallback when no file is set. The returned close function is never nil.
func (l LogConfig) NewLogger(fallback io.Writer) (*slog.Logger, func() error, error) {
	out := fallback
	closeFn := func() error { return nil }
	if l.File != "" {
		f, err := os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn = f, f.Close
	}

	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	var h slog.Handler
	switch strings.ToLower(l.Format) {
	case "json":
		h = slog.NewJSONHandler(out, opts)
	default:
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closeFn, nil
}

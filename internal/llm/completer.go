package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// CompleterConfig holds the per-call settings applied by a Completer.
type CompleterConfig struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // 0 = no deadline beyond ctx
	Logger      *slog.Logger
}

// Completer turns a single prompt into the model's raw text. It is the only
// entry point the workflows use to reach a provider.
type Completer struct {
	provider Provider
	cfg      CompleterConfig
	logger   *slog.Logger
}

// NewCompleterWith wraps an existing provider stack.
func NewCompleterWith(p Provider, cfg CompleterConfig) *Completer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Completer{provider: p, cfg: cfg, logger: logger}
}

// Complete sends prompt as one user message and returns the response text
// unmodified. The purpose label and output format are read from ctx (see
// WithPurpose and WithJSONOutput). Any provider failure or timeout is
// returned as *ServiceError.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	purpose := PurposeFrom(ctx)
	resp, err := c.provider.Generate(ctx, Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Format:      FormatFrom(ctx),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", c.cfg.Timeout, err)
		}
		return "", &ServiceError{Purpose: purpose, Model: c.provider.ModelID(), Err: err}
	}
	if resp.Truncated() {
		// The partial text is still usable; parsing falls back to raw output.
		c.logger.Warn("completion hit the token limit", "purpose", purpose,
			"model", resp.Model, "output_tokens", resp.Usage.OutputTokens)
	}
	return resp.Text, nil
}

// ModelID reports the model behind this completer.
func (c *Completer) ModelID() string {
	return c.provider.ModelID()
}

package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/eduai/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
// eventRepo may be nil, in which case calls are not recorded.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo)
	retried := WithRetry(logged, cfg.Retry)

	return retried, nil
}

// NewCompleter builds the provider stack for cfg and wraps it in a Completer
// using the configured temperature, token limit and timeout.
func NewCompleter(ctx context.Context, cfg Config, eventRepo store.EventRepo) (*Completer, error) {
	p, err := NewProvider(ctx, cfg, eventRepo)
	if err != nil {
		return nil, err
	}
	return NewCompleterWith(p, CompleterConfig{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	}), nil
}

package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single completion call
	// (including retries). Default: 120s.
	Timeout time.Duration

	// Temperature is sent with every completion. Default: 0.7.
	Temperature float64

	// MaxTokens bounds the response length. Default: 4096.
	MaxTokens int
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Proxy or gateway in front of the API.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenRouter or compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:     120 * time.Second,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// envBinding ties an environment variable to the config field it sets.
type envBinding struct {
	name string
	dst  *string
}

func (c *Config) envBindings() []envBinding {
	return []envBinding{
		{"EDUAI_LLM_PROVIDER", &c.Provider},
		{"EDUAI_ANTHROPIC_API_KEY", &c.Anthropic.APIKey},
		{"EDUAI_ANTHROPIC_MODEL", &c.Anthropic.Model},
		{"EDUAI_ANTHROPIC_BASE_URL", &c.Anthropic.BaseURL},
		{"EDUAI_OPENAI_API_KEY", &c.OpenAI.APIKey},
		{"EDUAI_OPENAI_MODEL", &c.OpenAI.Model},
		{"EDUAI_OPENAI_BASE_URL", &c.OpenAI.BaseURL},
		{"EDUAI_GEMINI_API_KEY", &c.Gemini.APIKey},
		{"EDUAI_GEMINI_MODEL", &c.Gemini.Model},
		{"EDUAI_OPENROUTER_API_KEY", &c.OpenRouter.APIKey},
		{"EDUAI_OPENROUTER_MODEL", &c.OpenRouter.Model},
		{"EDUAI_OPENROUTER_BASE_URL", &c.OpenRouter.BaseURL},
	}
}

// ConfigFromEnv builds a Config from the EDUAI_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, b := range cfg.envBindings() {
		if v := os.Getenv(b.name); v != "" {
			*b.dst = v
		}
	}
	return cfg
}

// vendorKeys lists the vendors' own API key variables in discovery order.
var vendorKeys = []struct{ env, provider string }{
	{"OPENAI_API_KEY", "openai"},
	{"GEMINI_API_KEY", "gemini"},
	{"ANTHROPIC_API_KEY", "anthropic"},
	{"OPENROUTER_API_KEY", "openrouter"},
}

// DiscoverConfig probes the vendors' standard API key variables (OpenAI,
// Gemini, Anthropic, OpenRouter) and returns a Config for the first one
// set. It reports false when none is.
func DiscoverConfig() (Config, bool) {
	for _, vk := range vendorKeys {
		k := os.Getenv(vk.env)
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = vk.provider
		*cfg.apiKey() = k
		return cfg, true
	}
	return Config{}, false
}

// apiKey points at the key field of the selected provider, or nil for
// providers without one.
func (c *Config) apiKey() *string {
	switch c.Provider {
	case "anthropic":
		return &c.Anthropic.APIKey
	case "openai":
		return &c.OpenAI.APIKey
	case "gemini":
		return &c.Gemini.APIKey
	case "openrouter":
		return &c.OpenRouter.APIKey
	}
	return nil
}

// Validate checks that the selected provider is known and has its API key,
// and that the sampling settings are in range.
func (c Config) Validate() error {
	switch c.Provider {
	case "mock":
	case "anthropic", "openai", "gemini", "openrouter":
		if *c.apiKey() == "" {
			return fmt.Errorf("EDUAI_%s_API_KEY is required for the %s provider",
				strings.ToUpper(c.Provider), c.Provider)
		}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative, got %d", c.MaxTokens)
	}
	return nil
}

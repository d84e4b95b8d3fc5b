package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// OpenRouter attributes traffic to an app by these headers.
	openRouterTitle   = "eduai"
	openRouterReferer = "https://github.com/abhisek/eduai"
)

// OpenRouterProvider wraps OpenAIProvider with OpenRouter-specific defaults.
// OpenRouter exposes an OpenAI-compatible API, so the underlying SDK is reused.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Model IDs are vendor-qualified ("openai/gpt-4o-mini") and pass through
// untouched.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenRouterBaseURL
	}
	config.HTTPClient = &http.Client{Transport: headerTransport{
		base: http.DefaultTransport,
		headers: map[string]string{
			"X-Title":      openRouterTitle,
			"HTTP-Referer": openRouterReferer,
		},
	}}
	return &OpenRouterProvider{OpenAIProvider: newOpenAIProviderRaw(config, cfg.Model)}, nil
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(Request{Format: FormatJSON, MaxTokens: 2048, Temperature: 0.7})
	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("ResponseMIMEType = %q, want application/json", cfg.ResponseMIMEType)
	}
	if cfg.MaxOutputTokens != 2048 {
		t.Errorf("MaxOutputTokens = %d, want 2048", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.7) {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}

	plain := geminiConfig(Request{})
	if plain.ResponseMIMEType != "" || plain.MaxOutputTokens != 0 || plain.Temperature != nil || plain.SystemInstruction != nil {
		t.Errorf("zero request should leave the config unset, got %+v", plain)
	}
}

func TestGeminiContents_Roles(t *testing.T) {
	got := geminiContents([]Message{
		{Role: RoleUser, Content: "Explain pressure."},
		{Role: RoleAssistant, Content: "{"},
	})
	if len(got) != 2 {
		t.Fatalf("got %d contents, want 2", len(got))
	}
	if got[0].Role != genai.RoleUser || got[1].Role != genai.RoleModel {
		t.Errorf("roles = %q, %q; want user, model", got[0].Role, got[1].Role)
	}
	if got[0].Parts[0].Text != "Explain pressure." {
		t.Errorf("text = %q", got[0].Parts[0].Text)
	}
}

func TestMapGeminiError(t *testing.T) {
	wrap := func(code int) error { return fmt.Errorf("generate: %w", genai.APIError{Code: code}) }

	var rl *ErrRateLimit
	if err := mapGeminiError(wrap(http.StatusTooManyRequests)); !errors.As(err, &rl) {
		t.Errorf("429 mapped to %T, want ErrRateLimit", err)
	}
	var unavail *ErrProviderUnavailable
	if err := mapGeminiError(wrap(http.StatusServiceUnavailable)); !errors.As(err, &unavail) {
		t.Errorf("503 mapped to %T, want ErrProviderUnavailable", err)
	}
	var rejected *ErrRequestRejected
	if err := mapGeminiError(wrap(http.StatusBadRequest)); !errors.As(err, &rejected) || rejected.Status != 400 {
		t.Errorf("400 mapped to %T, want ErrRequestRejected", err)
	}
	if err := mapGeminiError(errors.New("dial tcp: refused")); !errors.As(err, &unavail) {
		t.Errorf("network error mapped to %T, want ErrProviderUnavailable", err)
	}
}

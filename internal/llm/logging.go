package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/eduai/internal/store"
)

// LoggingProvider is a decorator that records every LLM request, with its
// purpose label and full prompt and response, in the event store.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging. The provider name is
// stored alongside the model. A nil repo disables recording.
func WithLogging(p Provider, provider string, repo store.EventRepo) Provider {
	if repo == nil {
		return p
	}
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	slog.Debug("LLM call", "purpose", purpose, "model", data.Model, "latency_ms", latencyMs,
		"input_tokens", data.InputTokens, "output_tokens", data.OutputTokens, "ok", data.Success)

	// The caller's context may already be cancelled; the event is still worth keeping.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if logErr := l.eventRepo.AppendLLMRequest(logCtx, data); logErr != nil {
		slog.Warn("failed to record LLM request event", "purpose", purpose, "error", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Format != FormatText {
		fmt.Fprintf(&b, "[format: %s]\n", req.Format)
	}
	return b.String()
}

package llm

import "context"

type (
	purposeKey struct{}
	formatKey  struct{}
)

// WithPurpose labels the completions made with ctx, e.g. "study-mcqs" or
// "grading". The label is recorded with every LLM event.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose label of ctx, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// WithJSONOutput asks completions made with ctx for a single JSON object.
func WithJSONOutput(ctx context.Context) context.Context {
	return context.WithValue(ctx, formatKey{}, FormatJSON)
}

// FormatFrom returns the output format requested on ctx.
func FormatFrom(ctx context.Context) Format {
	if f, ok := ctx.Value(formatKey{}).(Format); ok {
		return f
	}
	return FormatText
}

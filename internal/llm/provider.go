package llm

import "context"

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive the model's text.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its response text.
	// The text is returned as produced; callers parse it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Every workflow call is
	// single-turn and sends one user message.
	Messages []Message

	// Format asks for plain text or a single JSON object. Providers without
	// a native JSON mode steer the model instead; either way the response
	// may still need extraction.
	Format Format

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Format is the output shape requested from the model.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// Schema describes a JSON document the model is asked to produce. Responses
// are checked against it with Validate.
type Schema struct {
	// Name identifies this schema in compiled-schema caching and logs.
	// Kebab-case, e.g. "question-bank".
	Name string

	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Text is the generated output, unmodified.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Truncated reports whether the model ran out of output tokens.
func (r *Response) Truncated() bool { return r.StopReason == StopMaxTokens }

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

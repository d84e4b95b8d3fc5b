package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider. An empty
// StopReason reads as StopEnd.
type MockResponse struct {
	Text       string
	Usage      Usage
	StopReason string
	Err        error
}

// MockProvider is a deterministic Provider for tests and offline runs. It
// serves canned responses in FIFO order and records every request.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response, or ErrProviderUnavailable once
// the queue is drained.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	stop := next.StopReason
	if stop == "" {
		stop = StopEnd
	}
	return &Response{Text: next.Text, Usage: next.Usage, Model: "mock", StopReason: stop}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse queues another canned response.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Prompts returns the user message of every recorded call, in order.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		if n := len(c.Messages); n > 0 {
			out = append(out, c.Messages[n-1].Content)
		}
	}
	return out
}

package llm

import (
	"context"
	"sync"
)

// MockClient is a test double for the LLM Client interface.
type MockClient struct {
	Response *Response
	Err      error
	// Hook, when set, runs before the canned result is returned. Tests use it
	// to block until ctx is done or to count concurrent calls.
	Hook func(ctx context.Context) error

	mu    sync.Mutex
	calls []string
}

// Complete records the call and returns the mock response.
func (m *MockClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, prompt)
	m.mu.Unlock()

	if m.Hook != nil {
		if err := m.Hook(ctx); err != nil {
			return nil, err
		}
	}
	return m.Response, m.Err
}

// Calls returns the prompts sent so far.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Reply is a convenience for a MockClient that always answers text.
func Reply(text string) *MockClient {
	return &MockClient{Response: &Response{Content: text, Provider: "mock"}}
}

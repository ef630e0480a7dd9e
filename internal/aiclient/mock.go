package aiclient

import (
	"context"
	"sync"
)

// MockCompleter returns canned replies and records every prompt.
type MockCompleter struct {
	mu sync.Mutex

	// Response and Err are returned when CompleteFunc is nil.
	Response string
	Err      error

	CompleteFunc func(ctx context.Context, p Prompt) (string, error)

	prompts []Prompt
}

func (m *MockCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, p)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, p)
	}
	return m.Response, m.Err
}

// Prompts returns every prompt received so far.
func (m *MockCompleter) Prompts() []Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Prompt, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Calls returns how many times Complete was invoked.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

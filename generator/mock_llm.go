package generator

import (
	"context"
	"sync"
)

// MockReply scripts one MockLLM response.
type MockReply struct {
	Text   string
	Tokens int64
	Err    error
}

// MockLLM replays scripted replies in order, repeating the last one when
// the script runs out. Every prompt is recorded. Safe for concurrent use.
type MockLLM struct {
	mu      sync.Mutex
	Replies []MockReply
	Calls   []Prompt
}

func (m *MockLLM) Complete(_ context.Context, prompt Prompt) (Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, prompt)
	if len(m.Replies) == 0 {
		return Completion{Text: "mock post"}, nil
	}
	i := len(m.Calls) - 1
	if i >= len(m.Replies) {
		i = len(m.Replies) - 1
	}
	r := m.Replies[i]
	if r.Err != nil {
		return Completion{}, r.Err
	}
	return Completion{Text: r.Text, TotalTokens: r.Tokens}, nil
}

// CallCount reports how many prompts the mock has seen.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastPrompt returns the most recent prompt, or a zero Prompt when none.
func (m *MockLLM) LastPrompt() Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Prompt{}
	}
	return m.Calls[len(m.Calls)-1]
}

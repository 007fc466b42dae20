package llm

import (
	"context"
	"sync"
)

// MockModel is a call-counting Model for tests.
type MockModel struct {
	JSONResponse string
	JSONErr      error
	TextResponse string
	TextErr      error

	// OnJSON and OnText, when set, replace the fixed responses.
	OnJSON func(ctx context.Context, prompt string, schema *Schema) (string, error)
	OnText func(ctx context.Context, prompt string) (string, error)

	mu          sync.Mutex
	jsonCalls   int
	textCalls   int
	prompts     []string
	inFlight    int
	maxInFlight int
}

func (m *MockModel) enter(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
}

func (m *MockModel) leave() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
}

// GenerateJSON implements Model.
func (m *MockModel) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	m.enter(prompt)
	defer m.leave()
	m.mu.Lock()
	m.jsonCalls++
	m.mu.Unlock()

	if m.OnJSON != nil {
		return m.OnJSON(ctx, prompt, schema)
	}
	return m.JSONResponse, m.JSONErr
}

// GenerateText implements Model.
func (m *MockModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.enter(prompt)
	defer m.leave()
	m.mu.Lock()
	m.textCalls++
	m.mu.Unlock()

	if m.OnText != nil {
		return m.OnText(ctx, prompt)
	}
	return m.TextResponse, m.TextErr
}

// JSONCalls returns the number of GenerateJSON calls.
func (m *MockModel) JSONCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jsonCalls
}

// TextCalls returns the number of GenerateText calls.
func (m *MockModel) TextCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textCalls
}

// Calls returns the total number of calls.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jsonCalls + m.textCalls
}

// Prompts returns every prompt received, in call order.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// MaxInFlight returns the highest number of concurrent calls observed.
func (m *MockModel) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

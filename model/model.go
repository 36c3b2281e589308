// Package model defines the minimal language-model interface the extractor
// and reply styling depend on, plus a deterministic mock for tests. Provider
// adapters live in the openai and anthropic subpackages.
package model

import (
	"context"
	"fmt"
	"sync"
)

// Message is one conversational message presented to the model.
type Message struct {
	Role string `json:"role"` // "user", "assistant" or "tool"
	Text string `json:"text"`
}

// Request captures the normalized model input.
type Request struct {
	// Instructions carry the system prompt for this call.
	Instructions string `json:"instructions"`
	// Messages is the conversation history, newest last.
	Messages []Message `json:"messages"`
	// ForceJSON asks the provider for a strict JSON object response where
	// supported (structured extraction).
	ForceJSON bool `json:"force_json,omitempty"`
}

// Response is the completed model output.
type Response struct {
	Text  string      `json:"text"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// TokenUsage captures token statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the interface required to drive structured extraction and
// free-text generation. Implementations must honor ctx cancellation.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Responses can be registered per exact prompt or enqueued as a script that
// is consumed one call at a time; scripted responses win when present.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	script    []string
	calls     []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock"}, responses: map[string]string{}}
}

// AddResponse registers a deterministic completion for an input message.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends scripted responses consumed in FIFO order.
func (m *MockModel) Enqueue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
}

// Calls returns every request seen so far.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return Response{Text: next}, nil
	}
	var last string
	if len(req.Messages) > 0 {
		last = req.Messages[len(req.Messages)-1].Text
	}
	if canned, ok := m.responses[last]; ok {
		return Response{Text: canned}, nil
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", last)}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

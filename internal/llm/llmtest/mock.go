// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"fileagent/internal/llm"
)

// MockClient is a thread-safe scripted client.
//
// Responses are returned in order. When Handler is set it is consulted
// instead, which suits concurrent callers whose order is not fixed:
//
//	mock := &llmtest.MockClient{
//	    Responses: []*llm.ChatResponse{
//	        {Content: `{"is_event": true, "confidence_score": 0.9}`},
//	    },
//	}
type MockClient struct {
	Responses []*llm.ChatResponse
	Err       error // returned on every call, takes precedence
	Handler   func(req llm.ChatRequest) (*llm.ChatResponse, error)

	mu       sync.Mutex
	requests []llm.ChatRequest
	next     int
}

// Chat implements llm.Client.
func (m *MockClient) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	handler := m.Handler
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if handler != nil {
		return handler(req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next >= len(m.Responses) {
		return nil, fmt.Errorf("llmtest: no scripted response for call %d", m.next+1)
	}
	resp := m.Responses[m.next]
	m.next++
	return resp, nil
}

// Requests returns a copy of every request received so far.
func (m *MockClient) Requests() []llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns the number of Chat calls.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Reply builds a plain content response.
func Reply(content string) *llm.ChatResponse {
	return &llm.ChatResponse{Content: content, Model: "test-model", FinishReason: "stop"}
}

// ToolReply builds a response that requests the given tool calls.
func ToolReply(calls ...llm.ToolCall) *llm.ChatResponse {
	return &llm.ChatResponse{Model: "test-model", ToolCalls: calls, FinishReason: "tool_calls"}
}

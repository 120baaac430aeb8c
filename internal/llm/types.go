// Package llm provides chat completion clients for OpenAI-compatible APIs
// (Groq by default) with JSON-mode structured output and tool calling.
package llm

import (
	"context"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Client is implemented by every chat completion engine.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Message is a single chat turn.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // assistant turns that requested tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // tool turns answering a call
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// ToolResult builds the tool message answering call id.
func ToolResult(id, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: id}
}

// ToolDefinition describes a function the model may ask us to call.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema for arguments
	Strict      bool                   `json:"strict"`
}

// ToolCall is a function invocation requested by the model.
// Arguments is the raw JSON string exactly as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatRequest is an engine-neutral completion request.
// Zero values for MaxTokens, Temperature, ReasoningEffort and Model take the
// client defaults.
type ChatRequest struct {
	Model           string
	Messages        []Message
	Tools           []ToolDefinition
	JSONMode        bool // response_format {"type": "json_object"}
	MaxTokens       int
	Temperature     *float64
	ReasoningEffort string
}

// Usage captures token usage metrics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the first choice of a completion.
type ChatResponse struct {
	RequestID    string // client-side correlation id
	ID           string // provider completion id
	Model        string
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        Usage
	Duration     time.Duration
}

// AssistantMessage returns the assistant turn to echo back to the model in a
// follow-up request, keeping any tool calls it made.
func (r *ChatResponse) AssistantMessage() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   r.Content,
		ToolCalls: r.ToolCalls,
	}
}

// Float returns a pointer to v, for ChatRequest.Temperature.
func Float(v float64) *float64 { return &v }

// Defaults are applied to requests that leave fields unset.
type Defaults struct {
	Model           string
	MaxTokens       int
	Temperature     float64
	ReasoningEffort string
}

// apply fills zero fields of req from d.
func (d Defaults) apply(req ChatRequest) ChatRequest {
	if req.Model == "" {
		req.Model = d.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = d.MaxTokens
	}
	if req.Temperature == nil {
		req.Temperature = Float(d.Temperature)
	}
	if req.ReasoningEffort == "" {
		req.ReasoningEffort = d.ReasoningEffort
	}
	return req
}

// Package assistant implements the single-turn AI flows: a basic completion,
// JSON-object structured extraction, and two-pass tool calling for live
// weather and knowledge base retrieval.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fileagent/internal/llm"
	"fileagent/internal/logging"
	"fileagent/internal/tools"
)

// Defaults for the basic completion.
const (
	DefaultPoetSystem = "You are an expert in English poetry."
	DefaultPoetPrompt = "Write a short poem about the sea."
)

// ReasoningEffort used by every flow in this package.
const ReasoningEffort = "low"

var (
	// ErrNoWeatherSource is returned by Weather when no source was configured.
	ErrNoWeatherSource = errors.New("weather tool not configured")

	// ErrNoKnowledgeSource is returned by Retrieve when no source was configured.
	ErrNoKnowledgeSource = errors.New("knowledge tool not configured")
)

// Assistant runs the flows against one chat client.
type Assistant struct {
	client    llm.Client
	weather   *tools.Registry
	knowledge *tools.Registry
}

// Option configures an Assistant.
type Option func(*Assistant) error

// WithWeather registers get_weather backed by src.
func WithWeather(src tools.WeatherSource) Option {
	return func(a *Assistant) error {
		reg, err := tools.NewRegistry(tools.WeatherTool(src))
		a.weather = reg
		return err
	}
}

// WithKnowledge registers get_knowledge backed by src.
func WithKnowledge(src tools.KnowledgeSource) Option {
	return func(a *Assistant) error {
		reg, err := tools.NewRegistry(tools.KnowledgeTool(src))
		a.knowledge = reg
		return err
	}
}

// New creates an Assistant.
func New(client llm.Client, opts ...Option) (*Assistant, error) {
	a := &Assistant{client: client}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Answer is a plain completion.
type Answer struct {
	Content string
	Model   string
	Usage   llm.Usage
	Elapsed time.Duration
}

// Basic sends one system and one user message and returns the reply.
// Empty arguments take the poetry defaults.
func (a *Assistant) Basic(ctx context.Context, system, user string) (*Answer, error) {
	if system == "" {
		system = DefaultPoetSystem
	}
	if user == "" {
		user = DefaultPoetPrompt
	}

	start := time.Now()
	resp, err := a.client.Chat(ctx, llm.ChatRequest{
		Messages:        []llm.Message{llm.System(system), llm.User(user)},
		ReasoningEffort: ReasoningEffort,
	})
	if err != nil {
		return nil, fmt.Errorf("basic completion failed: %w", err)
	}
	if resp.Content == "" {
		return nil, llm.ErrNoContent
	}

	return &Answer{
		Content: resp.Content,
		Model:   resp.Model,
		Usage:   resp.Usage,
		Elapsed: time.Since(start),
	}, nil
}

// ToolExchange records what happened during a two-pass tool call.
type ToolExchange struct {
	Call    llm.ToolCall
	Result  string
	Elapsed time.Duration
}

// AskWithTools runs the two-pass tool flow. The first pass offers the
// registry's tools and must come back with at least one call; the first call
// is executed locally. The second pass replays the question, the assistant
// turn and the tool result under finalSystem in JSON mode and decodes the
// reply into out, checking the required keys.
func (a *Assistant) AskWithTools(ctx context.Context, system, finalSystem, question string, reg *tools.Registry, out interface{}, required ...string) (*ToolExchange, error) {
	timer := logging.StartTimer(logging.CategoryTools, "assistant.AskWithTools")
	defer timer.Stop()

	start := time.Now()
	first, err := a.client.Chat(ctx, llm.ChatRequest{
		Messages:        []llm.Message{llm.System(system), llm.User(question)},
		Tools:           reg.Definitions(),
		ReasoningEffort: ReasoningEffort,
	})
	if err != nil {
		return nil, fmt.Errorf("tool selection failed: %w", err)
	}
	if len(first.ToolCalls) == 0 {
		return nil, llm.ErrNoToolCalls
	}

	call := first.ToolCalls[0]
	if len(first.ToolCalls) > 1 {
		logging.Get(logging.CategoryTools).Warn("Model requested %d tool calls; running only %s", len(first.ToolCalls), call.Name)
	}
	logging.Tools("Model called %s(%s)", call.Name, call.Arguments)

	result, err := reg.Execute(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("tool %s failed: %w", call.Name, err)
	}

	second, err := a.client.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			llm.System(finalSystem),
			llm.User(question),
			first.AssistantMessage(),
			llm.ToolResult(call.ID, result.Result),
		},
		JSONMode:        true,
		ReasoningEffort: ReasoningEffort,
	})
	if err != nil {
		return nil, fmt.Errorf("final answer failed: %w", err)
	}
	if err := llm.DecodeRequired(second.Content, out, required...); err != nil {
		return nil, err
	}

	return &ToolExchange{Call: call, Result: result.Result, Elapsed: time.Since(start)}, nil
}

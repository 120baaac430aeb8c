// Package tools provides the functions the model may call during a
// tool-calling exchange.
//
// The model never runs anything itself. It picks a tool and produces the
// arguments; the Registry executes the tool locally and the result is sent
// back as a tool message.
//
//	ChatResponse.ToolCalls[0] → Registry.Execute() → llm.ToolResult(id, result)
package tools

import (
	"context"
)

// ToolCategory groups tools by the data they reach.
type ToolCategory string

const (
	// CategoryWeather covers live weather lookups.
	CategoryWeather ToolCategory = "/weather"

	// CategoryKnowledge covers knowledge base retrieval.
	CategoryKnowledge ToolCategory = "/knowledge"

	// CategoryGeneral is for everything else.
	CategoryGeneral ToolCategory = "/general"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// Parameters renders the schema as a strict JSON Schema object.
func (s ToolSchema) Parameters() map[string]interface{} {
	props := make(map[string]interface{}, len(s.Properties))
	for name, p := range s.Properties {
		prop := map[string]interface{}{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		props[name] = prop
	}
	required := s.Required
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// ExecuteFunc is the signature for tool execution.
// Returns the result string sent back to the model.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is a function the model can ask us to run.
type Tool struct {
	Name        string
	Description string
	Category    ToolCategory
	Schema      ToolSchema
	Execute     ExecuteFunc

	// Strict asks the provider to enforce the schema on generated arguments.
	Strict bool
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	ToolName   string
	CallID     string
	Result     string
	Error      error
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}

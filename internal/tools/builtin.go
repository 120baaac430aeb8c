package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"fileagent/internal/weather"
)

// Built-in tool names.
const (
	WeatherToolName   = "get_weather"
	KnowledgeToolName = "get_knowledge"
)

// WeatherSource fetches the current weather at a coordinate pair.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (*weather.CurrentWeather, error)
}

// KnowledgeSource answers a question with knowledge base content as JSON.
type KnowledgeSource interface {
	Lookup(question string) (string, error)
}

// WeatherTool returns get_weather backed by src.
func WeatherTool(src WeatherSource) *Tool {
	return &Tool{
		Name:        WeatherToolName,
		Description: "Fetches the current weather for the given latitude and longitude.",
		Category:    CategoryWeather,
		Strict:      true,
		Schema: ToolSchema{
			Required: []string{"latitude", "longitude"},
			Properties: map[string]Property{
				"latitude":  {Type: "number"},
				"longitude": {Type: "number"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			lat, err := Float(args, "latitude")
			if err != nil {
				return "", err
			}
			lon, err := Float(args, "longitude")
			if err != nil {
				return "", err
			}
			cur, err := src.Current(ctx, lat, lon)
			if err != nil {
				return "", err
			}
			data, err := json.Marshal(cur)
			if err != nil {
				return "", fmt.Errorf("failed to encode weather: %w", err)
			}
			return string(data), nil
		},
	}
}

// KnowledgeTool returns get_knowledge backed by src.
func KnowledgeTool(src KnowledgeSource) *Tool {
	return &Tool{
		Name:        KnowledgeToolName,
		Description: "Get the answer to the user's question from the knowledge base.",
		Category:    CategoryKnowledge,
		Strict:      true,
		Schema: ToolSchema{
			Required: []string{"question"},
			Properties: map[string]Property{
				"question": {Type: "string"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			q, err := String(args, "question")
			if err != nil {
				return "", err
			}
			return src.Lookup(q)
		},
	}
}

package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"fileagent/internal/llm"
)

// Prompts and default inputs for the flows.
const (
	ExtractSystem    = `Extract the event information. Respond in JSON with this schema: {"name": string, "date": string, "participants": [string]}`
	DefaultEventText = "Alice and Bob are going to a science fair on Friday."

	WeatherSystem          = "You're a helpful weather assistant."
	WeatherFinalSystem     = `You're a helpful weather assistant. Respond in JSON with this schema: {"temperature": float, "response": string}`
	DefaultWeatherQuestion = "What's the weather like in New York?"

	KnowledgeSystem          = "You are a helpful assistant that answers questions from the knowledge base about our e-commerce store."
	KnowledgeFinalSystem     = KnowledgeSystem + " Always begin your answer with 'Yep' or 'Nah' first, then provide the details. Respond in json format with 'answer' and 'source' keys."
	DefaultKnowledgeQuestion = "Is there any return/refund policy? if yes, what is the policy?"
)

// CalendarEvent is the structured extraction result.
type CalendarEvent struct {
	Name         string   `json:"name"`
	Date         string   `json:"date"`
	Participants []string `json:"participants"`

	Elapsed time.Duration `json:"-"`
}

// ExtractCalendarEvent asks the model for a JSON object describing the event
// in text.
func (a *Assistant) ExtractCalendarEvent(ctx context.Context, text string) (*CalendarEvent, error) {
	if text == "" {
		text = DefaultEventText
	}

	start := time.Now()
	resp, err := a.client.Chat(ctx, llm.ChatRequest{
		Messages:        []llm.Message{llm.System(ExtractSystem), llm.User(text)},
		JSONMode:        true,
		ReasoningEffort: ReasoningEffort,
	})
	if err != nil {
		return nil, fmt.Errorf("event extraction failed: %w", err)
	}

	var ev CalendarEvent
	if err := llm.DecodeRequired(resp.Content, &ev, "name", "date", "participants"); err != nil {
		return nil, err
	}
	ev.Elapsed = time.Since(start)
	return &ev, nil
}

// WeatherAnswer is the final reply of the weather flow.
type WeatherAnswer struct {
	Temperature float64 `json:"temperature"`
	Response    string  `json:"response"`

	Exchange *ToolExchange `json:"-"`
}

// Weather answers a weather question through get_weather.
func (a *Assistant) Weather(ctx context.Context, question string) (*WeatherAnswer, error) {
	if a.weather == nil {
		return nil, ErrNoWeatherSource
	}
	if question == "" {
		question = DefaultWeatherQuestion
	}

	var out WeatherAnswer
	ex, err := a.AskWithTools(ctx, WeatherSystem, WeatherFinalSystem, question, a.weather, &out, "temperature", "response")
	if err != nil {
		return nil, err
	}
	out.Exchange = ex
	return &out, nil
}

// Source is a knowledge citation. Models return either a string or a record
// id, so both decode.
type Source string

// UnmarshalJSON accepts a JSON string or number.
func (s *Source) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Source(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("source must be a string or integer: %s", data)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("source must be a string or integer: %s", data)
	}
	*s = Source(n.String())
	return nil
}

// KnowledgeAnswer is the final reply of the retrieval flow.
type KnowledgeAnswer struct {
	Answer string `json:"answer"`
	Source Source `json:"source"`

	Exchange *ToolExchange `json:"-"`
}

// Retrieve answers a question from the knowledge base through get_knowledge.
func (a *Assistant) Retrieve(ctx context.Context, question string) (*KnowledgeAnswer, error) {
	if a.knowledge == nil {
		return nil, ErrNoKnowledgeSource
	}
	if question == "" {
		question = DefaultKnowledgeQuestion
	}

	var out KnowledgeAnswer
	ex, err := a.AskWithTools(ctx, KnowledgeSystem, KnowledgeFinalSystem, question, a.knowledge, &out, "answer", "source")
	if err != nil {
		return nil, err
	}
	out.Exchange = ex
	return &out, nil
}

package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fileagent/internal/llm"
	"fileagent/internal/weather"
)

func noop(ctx context.Context, args map[string]any) (string, error) { return "", nil }

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got %d tools", reg.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg, _ := NewRegistry()

	tool := &Tool{Name: "test_tool", Description: "A test tool", Category: CategoryGeneral, Execute: noop}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("test_tool")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Name != "test_tool" {
		t.Errorf("got name %q, want %q", got.Name, "test_tool")
	}
	if reg.Get("missing") != nil {
		t.Error("Get should return nil for unknown tool")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	tool := &Tool{Name: "dupe", Execute: noop}
	_, err := NewRegistry(tool, tool)
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Fatalf("expected ErrToolAlreadyRegistered, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg, _ := NewRegistry()

	tests := []struct {
		name    string
		tool    *Tool
		wantErr error
	}{
		{name: "empty name", tool: &Tool{Name: "", Execute: noop}, wantErr: ErrToolNameEmpty},
		{name: "nil execute", tool: &Tool{Name: "test"}, wantErr: ErrToolExecuteNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.tool)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetByCategory(t *testing.T) {
	reg, err := NewRegistry(
		&Tool{Name: "w1", Category: CategoryWeather, Execute: noop},
		&Tool{Name: "k1", Category: CategoryKnowledge, Execute: noop},
		&Tool{Name: "w2", Category: CategoryWeather, Execute: noop},
	)
	if err != nil {
		t.Fatal(err)
	}

	got := reg.GetByCategory(CategoryWeather)
	if len(got) != 2 || got[0].Name != "w1" || got[1].Name != "w2" {
		t.Errorf("GetByCategory(/weather) returned wrong tools: %v", got)
	}
}

func TestDefinitions(t *testing.T) {
	reg, _ := NewRegistry(KnowledgeTool(nil), WeatherTool(nil))

	defs := reg.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != KnowledgeToolName || defs[1].Name != WeatherToolName {
		t.Errorf("definitions not sorted by name: %s, %s", defs[0].Name, defs[1].Name)
	}

	w := defs[1]
	if !w.Strict {
		t.Error("get_weather should be strict")
	}
	if w.Parameters["additionalProperties"] != false {
		t.Error("strict schema must forbid additional properties")
	}
	required, _ := w.Parameters["required"].([]string)
	if strings.Join(required, ",") != "latitude,longitude" {
		t.Errorf("unexpected required list: %v", required)
	}
	props := w.Parameters["properties"].(map[string]interface{})
	if props["latitude"].(map[string]interface{})["type"] != "number" {
		t.Errorf("latitude should be a number: %v", props["latitude"])
	}
}

func TestExecute(t *testing.T) {
	reg, _ := NewRegistry(&Tool{
		Name:     "echo",
		Category: CategoryGeneral,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			msg, _ := args["message"].(string)
			return "Echo: " + msg, nil
		},
		Schema: ToolSchema{
			Required:   []string{"message"},
			Properties: map[string]Property{"message": {Type: "string"}},
		},
	})

	result, err := reg.Execute(context.Background(), llm.ToolCall{ID: "call_1", Name: "echo", Arguments: `{"message":"hello"}`})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Result != "Echo: hello" {
		t.Errorf("got result %q, want %q", result.Result, "Echo: hello")
	}
	if result.CallID != "call_1" {
		t.Errorf("got call id %q", result.CallID)
	}
	if !result.IsSuccess() {
		t.Error("expected IsSuccess to be true")
	}

	_, err = reg.Execute(context.Background(), llm.ToolCall{Name: "echo", Arguments: `{}`})
	if !errors.Is(err, ErrMissingRequiredArg) {
		t.Errorf("expected ErrMissingRequiredArg, got %v", err)
	}

	_, err = reg.Execute(context.Background(), llm.ToolCall{Name: "echo", Arguments: `[1,2]`})
	if !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("expected ErrInvalidArguments, got %v", err)
	}

	_, err = reg.Execute(context.Background(), llm.ToolCall{Name: "nonexistent"})
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}
}

type fakeWeather struct {
	lat, lon float64
	err      error
}

func (f *fakeWeather) Current(ctx context.Context, lat, lon float64) (*weather.CurrentWeather, error) {
	f.lat, f.lon = lat, lon
	if f.err != nil {
		return nil, f.err
	}
	return &weather.CurrentWeather{Time: "2026-02-07T08:15", Interval: 900, Temperature2m: 11.6, WindSpeed10m: 14.1}, nil
}

type fakeKnowledge struct{ question string }

func (f *fakeKnowledge) Lookup(question string) (string, error) {
	f.question = question
	return `{"faq":[{"question":"Return policy?","answer":"30 days"}]}`, nil
}

func TestWeatherTool(t *testing.T) {
	src := &fakeWeather{}
	reg, _ := NewRegistry(WeatherTool(src))

	res, err := reg.Execute(context.Background(), llm.ToolCall{Name: WeatherToolName, Arguments: `{"latitude":40.7128,"longitude":-74.006}`})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if src.lat != 40.7128 || src.lon != -74.006 {
		t.Errorf("coordinates not forwarded: %v,%v", src.lat, src.lon)
	}
	want := `{"time":"2026-02-07T08:15","interval":900,"temperature_2m":11.6,"wind_speed_10m":14.1}`
	if res.Result != want {
		t.Errorf("got %s, want %s", res.Result, want)
	}

	_, err = reg.Execute(context.Background(), llm.ToolCall{Name: WeatherToolName, Arguments: `{"latitude":"north","longitude":1}`})
	if !errors.Is(err, ErrInvalidArgType) {
		t.Errorf("expected ErrInvalidArgType, got %v", err)
	}

	src.err = errors.New("upstream down")
	_, err = reg.Execute(context.Background(), llm.ToolCall{Name: WeatherToolName, Arguments: `{"latitude":1,"longitude":1}`})
	if err == nil {
		t.Error("expected source error to propagate")
	}
}

func TestKnowledgeTool(t *testing.T) {
	src := &fakeKnowledge{}
	reg, _ := NewRegistry(KnowledgeTool(src))

	res, err := reg.Execute(context.Background(), llm.ToolCall{Name: KnowledgeToolName, Arguments: `{"question":"Is there a return policy?"}`})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if src.question != "Is there a return policy?" {
		t.Errorf("question not forwarded: %q", src.question)
	}
	if !strings.Contains(res.Result, "30 days") {
		t.Errorf("unexpected result %s", res.Result)
	}
}

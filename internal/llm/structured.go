package llm

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports a structured output field that is missing or out
// of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid model output: %s %s", e.Field, e.Reason)
}

// DecodeRequired decodes model content into v and checks that every required
// key is present in the top-level object.
func DecodeRequired(content string, v interface{}, required ...string) error {
	if err := DecodeJSON(content, v); err != nil {
		return err
	}
	if len(required) == 0 {
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &keys); err != nil {
		return fmt.Errorf("failed to decode model output: %w", err)
	}
	for _, field := range required {
		raw, ok := keys[field]
		if !ok || string(raw) == "null" {
			return &ValidationError{Field: field, Reason: "is required"}
		}
	}
	return nil
}

// CheckUnit returns a ValidationError unless v is within [0, 1].
func CheckUnit(field string, v float64) error {
	if v < 0 || v > 1 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be between 0 and 1, got %v", v)}
	}
	return nil
}

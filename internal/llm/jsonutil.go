package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeJSON decodes model content into v. Surrounding markdown code fences
// are tolerated; anything after the first JSON value is an error.
func DecodeJSON(content string, v interface{}) error {
	content = stripCodeFences(content)
	if content == "" {
		return ErrNoContent
	}

	dec := json.NewDecoder(strings.NewReader(content))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode model output: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("failed to decode model output: trailing data after JSON value")
	}
	return nil
}

// stripCodeFences removes a ```json ... ``` wrapper if present.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	firstNewline := strings.Index(trimmed, "\n")
	if firstNewline == -1 {
		return trimmed
	}
	lastFence := strings.LastIndex(trimmed, "```")
	if lastFence <= firstNewline {
		return trimmed
	}
	return strings.TrimSpace(trimmed[firstNewline+1 : lastFence])
}


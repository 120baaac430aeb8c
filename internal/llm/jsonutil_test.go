package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type event struct {
		Name         string   `json:"name"`
		Date         string   `json:"date"`
		Participants []string `json:"participants"`
	}

	tests := []struct {
		name    string
		content string
		want    event
		wantErr bool
	}{
		{
			name:    "plain object",
			content: `{"name":"Science Fair","date":"Friday","participants":["Alice","Bob"]}`,
			want:    event{Name: "Science Fair", Date: "Friday", Participants: []string{"Alice", "Bob"}},
		},
		{
			name:    "fenced",
			content: "```json\n{\"name\":\"Standup\",\"date\":\"Monday\",\"participants\":[]}\n```",
			want:    event{Name: "Standup", Date: "Monday", Participants: []string{}},
		},
		{
			name:    "bare fence",
			content: "```\n{\"name\":\"x\"}\n```",
			want:    event{Name: "x"},
		},
		{name: "trailing data", content: `{"name":"x"} extra`, wantErr: true},
		{name: "not json", content: `The event is on Friday.`, wantErr: true},
		{name: "wrong type", content: `{"participants":"Alice"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got event
			err := DecodeJSON(tt.content, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON_Empty(t *testing.T) {
	var v map[string]interface{}
	assert.ErrorIs(t, DecodeJSON("   ", &v), ErrNoContent)
	assert.ErrorIs(t, DecodeJSON("", &v), ErrNoContent)
}

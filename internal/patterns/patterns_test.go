package patterns

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fileagent/internal/calendar"
	"fileagent/internal/llm"
	"fileagent/internal/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
}

func newStore(t *testing.T) *calendar.Store {
	t.Helper()
	s, err := calendar.Open(calendar.DriverPure, filepath.Join(t.TempDir(), "calendar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProcessChain(t *testing.T) {
	mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{
		llmtest.Reply(`{"description": "Design team meeting next Tuesday 3 PM for 1 hour", "is_event": true, "confidence_score": 0.95}`),
		llmtest.Reply(`{"name": "App UI discussion", "date": "2026-10-20T15:00:00", "duration": 60, "participants": ["Alice", "Bob"]}`),
		llmtest.Reply(`{"confirmation_message": "Your meeting is booked. AI Assistant", "calendar_link": null}`),
	}}
	a := New(mock, WithClock(fixedClock))

	c, err := a.ProcessChain(context.Background(), ChainInputs[0])
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Your meeting is booked. AI Assistant", c.Message)
	assert.Empty(t, c.CalendarLink)

	reqs := mock.Requests()
	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.True(t, r.JSONMode)
		assert.Equal(t, "medium", r.ReasoningEffort)
		assert.Equal(t, 4096, r.MaxTokens)
		assert.Equal(t, 0.7, *r.Temperature)
	}
	assert.True(t, strings.HasPrefix(reqs[0].Messages[0].Content, "Today is 2026-10-19."))
	assert.Equal(t, ChainInputs[0], reqs[0].Messages[1].Content)
	assert.Equal(t, "Design team meeting next Tuesday 3 PM for 1 hour", reqs[1].Messages[1].Content)
	assert.Equal(t, "name='App UI discussion' date='2026-10-20T15:00:00' duration=60.0 participants=['Alice', 'Bob']", reqs[2].Messages[1].Content)
}

func TestProcessChain_Gated(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		threshold float64
	}{
		{"not an event", `{"description": "email Alice", "is_event": false, "confidence_score": 0.9}`, DefaultThreshold},
		{"low confidence", `{"description": "maybe lunch", "is_event": true, "confidence_score": 0.69}`, DefaultThreshold},
		{"custom threshold", `{"description": "lunch", "is_event": true, "confidence_score": 0.8}`, 0.85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{llmtest.Reply(tt.reply)}}
			a := New(mock, WithThreshold(tt.threshold))
			assert.Equal(t, tt.threshold, a.Threshold())

			c, err := a.ProcessChain(context.Background(), "input")
			require.NoError(t, err)
			assert.Nil(t, c)
			assert.Equal(t, 1, mock.CallCount())
		})
	}
}

func TestProcessChain_ThresholdInclusive(t *testing.T) {
	mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{
		llmtest.Reply(`{"description": "d", "is_event": true, "confidence_score": 0.7}`),
		llmtest.Reply(`{"name": "n", "date": "2026-10-20", "duration": 30, "participants": []}`),
		llmtest.Reply(`{"confirmation_message": "ok"}`),
	}}
	c, err := New(mock).ProcessChain(context.Background(), "input")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 3, mock.CallCount())
}

func TestProcessChain_Persists(t *testing.T) {
	store := newStore(t)
	mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{
		llmtest.Reply(`{"description": "Design review", "is_event": true, "confidence_score": 0.9}`),
		llmtest.Reply(`{"name": "Design review", "date": "2026-10-20T15:00:00", "duration": 60, "participants": ["Alice"]}`),
		llmtest.Reply(`{"confirmation_message": "Booked."}`),
	}}
	a := New(mock, WithStore(store))

	c, err := a.ProcessChain(context.Background(), "design review tuesday")
	require.NoError(t, err)

	events, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Design review", events[0].Name)
	assert.Equal(t, events[0].Link(), c.CalendarLink)
	assert.Contains(t, mock.Requests()[2].Messages[1].Content, "calendar_link='"+events[0].Link()+"'")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		field string
	}{
		{"score out of range", `{"description": "d", "is_event": true, "confidence_score": 1.5}`, "confidence_score"},
		{"missing field", `{"description": "d", "confidence_score": 0.5}`, "is_event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{llmtest.Reply(tt.reply)}}
			_, err := New(mock).Validate(context.Background(), "x")
			var verr *llm.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	mock := &llmtest.MockClient{Err: llm.NewFatalError(errors.New("401 unauthorized"))}
	_, err := New(mock).ProcessChain(context.Background(), "x")
	assert.True(t, llm.IsFatal(err))
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		replies  []string
		wantNil  bool
		wantMsg  string
		wantCall int
	}{
		{
			name: "new event",
			replies: []string{
				`{"description": "Team meeting next Tuesday 2pm with Alice and Bob", "request_type": "new_event", "confidence_score": 0.9}`,
				`{"name": "Team meeting", "date": "2026-10-20T14:00:00", "duration": 60, "participants": ["Alice", "Bob"]}`,
			},
			wantMsg:  "New event created called: 'Team meeting', scheduled on 2026-10-20T14:00:00 for 60.0 minutes with participants Alice, Bob.",
			wantCall: 2,
		},
		{
			name: "modify event",
			replies: []string{
				`{"description": "Move team meeting to Wednesday 3pm", "request_type": "modify_event", "confidence_score": 0.85}`,
				`{"description": "Move to Wednesday", "updated_date": "2026-10-21T15:00:00", "participants_to_add": [], "participants_to_remove": ["Bob"]}`,
			},
			wantMsg:  "Event modified with description: 'Move to Wednesday', updated date: 2026-10-21T15:00:00, participants to add: , participants to remove: Bob.",
			wantCall: 2,
		},
		{
			name:     "other",
			replies:  []string{`{"description": "weather question", "request_type": "other", "confidence_score": 0.95}`},
			wantNil:  true,
			wantCall: 1,
		},
		{
			name:     "low confidence",
			replies:  []string{`{"description": "meeting?", "request_type": "new_event", "confidence_score": 0.5}`},
			wantNil:  true,
			wantCall: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var responses []*llm.ChatResponse
			for _, r := range tt.replies {
				responses = append(responses, llmtest.Reply(r))
			}
			mock := &llmtest.MockClient{Responses: responses}

			res, err := New(mock, WithClock(fixedClock)).Route(context.Background(), "input")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCall, mock.CallCount())
			if tt.wantNil {
				assert.Nil(t, res)
				return
			}
			require.NotNil(t, res)
			assert.True(t, res.Success)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.Nil(t, res.Event)
		})
	}
}

func TestRoute_UnknownType(t *testing.T) {
	mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{
		llmtest.Reply(`{"description": "d", "request_type": "delete_event", "confidence_score": 0.9}`),
	}}
	_, err := New(mock).Route(context.Background(), "input")
	var verr *llm.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "request_type", verr.Field)
}

func TestRoute_WithStore(t *testing.T) {
	store := newStore(t)
	mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{
		llmtest.Reply(`{"description": "Team meeting next Tuesday 2pm with Alice and Bob", "request_type": "new_event", "confidence_score": 0.9}`),
		llmtest.Reply(`{"name": "Team meeting", "date": "2026-10-20T14:00:00", "duration": 60, "participants": ["Alice", "Bob"]}`),
		llmtest.Reply(`{"description": "Move the team meeting with Alice and Bob to Wednesday at 3pm", "request_type": "modify_event", "confidence_score": 0.9}`),
		llmtest.Reply(`{"description": "Move to Wednesday 3pm", "updated_date": "2026-10-21T15:00:00", "participants_to_add": ["Charlie"], "participants_to_remove": ["Bob"]}`),
		llmtest.Reply(`{"description": "Cancel yoga", "request_type": "modify_event", "confidence_score": 0.9}`),
		llmtest.Reply(`{"description": "Cancel yoga", "updated_date": "", "participants_to_add": [], "participants_to_remove": []}`),
	}}
	a := New(mock, WithStore(store))
	ctx := context.Background()

	created, err := a.Route(ctx, RouteInputs[0])
	require.NoError(t, err)
	require.NotNil(t, created.Event)

	modified, err := a.Route(ctx, RouteInputs[1])
	require.NoError(t, err)
	require.True(t, modified.Success)
	require.NotNil(t, modified.Event)
	assert.Equal(t, created.Event.ID, modified.Event.ID)
	assert.Equal(t, "2026-10-21T15:00:00", modified.Event.Date)
	assert.Equal(t, []string{"Alice", "Charlie"}, modified.Event.Participants)

	missing, err := a.Route(ctx, "cancel my yoga class")
	require.NoError(t, err)
	require.NotNil(t, missing)
	assert.False(t, missing.Success)
	assert.Contains(t, missing.Message, "No matching event found")
}

func TestPrintRoute_TitlesFollowRequestType(t *testing.T) {
	tests := []struct {
		name      string
		replies   []string
		wantTitle string
		wantLine  string
	}{
		{
			name: "modify",
			replies: []string{
				`{"description": "Move team meeting to Wednesday", "request_type": "modify_event", "confidence_score": 0.9}`,
				`{"description": "Move to Wednesday", "updated_date": "2026-10-21T15:00:00", "participants_to_add": [], "participants_to_remove": []}`,
			},
			wantTitle: "EVENT MODIFIED SUCCESSFULLY",
			wantLine:  "Result: Event modified with description:",
		},
		{
			name:      "low confidence new event",
			replies:   []string{`{"description": "lunch?", "request_type": "new_event", "confidence_score": 0.3}`},
			wantTitle: "EVENT CREATION FAILED",
			wantLine:  "Unable to process the request.",
		},
		{
			name:      "other",
			replies:   []string{`{"description": "weather", "request_type": "other", "confidence_score": 0.9}`},
			wantTitle: "REQUEST PROCESSING FAILED",
			wantLine:  "Unable to process the request.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var responses []*llm.ChatResponse
			for _, r := range tt.replies {
				responses = append(responses, llmtest.Reply(r))
			}
			mock := &llmtest.MockClient{Responses: responses}

			var buf bytes.Buffer
			require.NoError(t, New(mock).PrintRoute(context.Background(), &buf, "input", 0))
			out := buf.String()
			assert.Contains(t, out, tt.wantTitle)
			assert.Contains(t, out, tt.wantLine)
			assert.NotContains(t, out, "Test #")
		})
	}
}

func TestRouteRequest_ReturnsClassification(t *testing.T) {
	mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{
		llmtest.Reply(`{"description": "weather", "request_type": "other", "confidence_score": 0.9}`),
	}}
	rt, res, err := New(mock).RouteRequest(context.Background(), "input")
	require.NoError(t, err)
	assert.Nil(t, res)
	require.NotNil(t, rt)
	assert.Equal(t, RequestOther, rt.RequestType)
}

func screeningMock(calendarReply, securityReply string, delay time.Duration) *llmtest.MockClient {
	return &llmtest.MockClient{
		Handler: func(req llm.ChatRequest) (*llm.ChatResponse, error) {
			if strings.Contains(req.Messages[0].Content, "prompt injection") {
				time.Sleep(delay)
				return llmtest.Reply(securityReply), nil
			}
			return llmtest.Reply(calendarReply), nil
		},
	}
}

func TestScreen(t *testing.T) {
	tests := []struct {
		name         string
		calendar     string
		security     string
		wantCalendar bool
		wantSafe     bool
	}{
		{"valid and safe", `{"is_calender_request": true, "confidence_score": 0.95}`, `{"is_safe": true, "risk_flags": []}`, true, true},
		{"threshold is exclusive", `{"is_calender_request": true, "confidence_score": 0.7}`, `{"is_safe": true, "risk_flags": []}`, false, true},
		{"unsafe", `{"is_calender_request": true, "confidence_score": 0.9}`, `{"is_safe": false, "risk_flags": ["prompt_injection"]}`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := screeningMock(tt.calendar, tt.security, 0)
			s, err := New(mock).Screen(context.Background(), "input")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalendar, s.IsCalendarRequest)
			assert.Equal(t, tt.wantSafe, s.IsSafe)
			assert.Equal(t, 2, mock.CallCount())
		})
	}
}

func TestScreen_RequestSettings(t *testing.T) {
	mock := screeningMock(`{"is_calender_request": true, "confidence_score": 0.9}`, `{"is_safe": true, "risk_flags": []}`, 0)
	_, err := New(mock).Screen(context.Background(), "input")
	require.NoError(t, err)

	for _, r := range mock.Requests() {
		if strings.Contains(r.Messages[0].Content, "prompt injection") {
			assert.Equal(t, "high", r.ReasoningEffort)
			assert.Equal(t, 0.5, *r.Temperature)
		} else {
			assert.Equal(t, "medium", r.ReasoningEffort)
			assert.Equal(t, 0.7, *r.Temperature)
		}
		assert.Zero(t, r.MaxTokens)
	}
}

func TestScreen_RunsConcurrently(t *testing.T) {
	var inFlight, peak int32
	mock := &llmtest.MockClient{
		Handler: func(req llm.ChatRequest) (*llm.ChatResponse, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			if strings.Contains(req.Messages[0].Content, "prompt injection") {
				return llmtest.Reply(`{"is_safe": true, "risk_flags": []}`), nil
			}
			return llmtest.Reply(`{"is_calender_request": true, "confidence_score": 0.9}`), nil
		},
	}
	_, err := New(mock).Screen(context.Background(), "input")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestScreen_ErrorCancelsSibling(t *testing.T) {
	boom := errors.New("boom")
	mock := &llmtest.MockClient{
		Handler: func(req llm.ChatRequest) (*llm.ChatResponse, error) {
			if strings.Contains(req.Messages[0].Content, "prompt injection") {
				return nil, boom
			}
			time.Sleep(20 * time.Millisecond)
			return llmtest.Reply(`{"is_calender_request": true, "confidence_score": 0.9}`), nil
		},
	}
	_, err := New(mock).Screen(context.Background(), "input")
	assert.ErrorIs(t, err, boom)
}

func TestDemos(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{
			llmtest.Reply(`{"description": "d", "is_event": true, "confidence_score": 0.9}`),
			llmtest.Reply(`{"name": "UI review", "date": "2026-10-20T15:00:00", "duration": 60, "participants": ["Alice"]}`),
			llmtest.Reply(`{"confirmation_message": "Booked!", "calendar_link": "https://cal.example/1"}`),
			llmtest.Reply(`{"description": "email", "is_event": false, "confidence_score": 0.9}`),
		}}
		var buf bytes.Buffer
		require.NoError(t, New(mock).RunChainDemo(context.Background(), &buf))
		out := buf.String()
		assert.Contains(t, out, "EVENT SCHEDULED SUCCESSFULLY")
		assert.Contains(t, out, "Message: Booked!")
		assert.Contains(t, out, "Calendar Link: https://cal.example/1")
		assert.Contains(t, out, "EVENT SCHEDULING FAILED")
		assert.Contains(t, out, "Not recognized as a valid event.")
	})

	t.Run("route", func(t *testing.T) {
		mock := &llmtest.MockClient{Responses: []*llm.ChatResponse{
			llmtest.Reply(`{"description": "d", "request_type": "new_event", "confidence_score": 0.9}`),
			llmtest.Reply(`{"name": "Team meeting", "date": "2026-10-20T14:00:00", "duration": 30, "participants": ["Alice"]}`),
			llmtest.Reply(`{"description": "d", "request_type": "modify_event", "confidence_score": 0.4}`),
			llmtest.Reply(`{"description": "d", "request_type": "other", "confidence_score": 0.9}`),
		}}
		var buf bytes.Buffer
		require.NoError(t, New(mock).RunRouteDemo(context.Background(), &buf))
		out := buf.String()
		assert.Contains(t, out, "EVENT CREATED SUCCESSFULLY")
		assert.Contains(t, out, "Test #1 Result: New event created called: 'Team meeting'")
		assert.Contains(t, out, "EVENT MODIFICATION FAILED")
		assert.Contains(t, out, "REQUEST PROCESSING FAILED")
	})

	t.Run("parallel", func(t *testing.T) {
		mock := &llmtest.MockClient{
			Handler: func(req llm.ChatRequest) (*llm.ChatResponse, error) {
				malicious := strings.Contains(req.Messages[1].Content, "Ignore previous instructions")
				if strings.Contains(req.Messages[0].Content, "prompt injection") {
					if malicious {
						return llmtest.Reply(`{"is_safe": false, "risk_flags": ["instruction override"]}`), nil
					}
					return llmtest.Reply(`{"is_safe": true, "risk_flags": []}`), nil
				}
				return llmtest.Reply(`{"is_calender_request": true, "confidence_score": 0.9}`), nil
			},
		}
		var buf bytes.Buffer
		require.NoError(t, New(mock).RunParallelDemo(context.Background(), &buf))
		out := buf.String()
		assert.Contains(t, out, "The input is safe.")
		assert.Contains(t, out, "The input is not safe.")
		assert.Contains(t, out, "Is Calendar Event Request: True")
		assert.Contains(t, out, "Risk Flags: ['instruction override']")
	})
}

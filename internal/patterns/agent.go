// Package patterns implements three agent workflows over calendar requests:
// prompt chaining (validate, extract, confirm), routing (classify, then hand
// off to a new or modify handler) and parallelization (calendar and security
// checks run concurrently).
package patterns

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fileagent/internal/calendar"
	"fileagent/internal/llm"
	"fileagent/internal/logging"
)

// DefaultThreshold is the minimum confidence score that lets a request through.
const DefaultThreshold = 0.7

// DateLayout is how today's date is shown to the model.
const DateLayout = "2006-01-02"

// EventStore persists events produced by the workflows.
type EventStore interface {
	Create(ctx context.Context, ev calendar.Event) (*calendar.Event, error)
	ApplyChange(ctx context.Context, ch calendar.Change) (*calendar.Event, error)
}

// Agent runs the workflows against one chat client.
type Agent struct {
	client    llm.Client
	store     EventStore
	threshold float64
	now       func() time.Time
}

// Option configures an Agent.
type Option func(*Agent)

// WithStore persists created and modified events.
func WithStore(s EventStore) Option {
	return func(a *Agent) { a.store = s }
}

// WithThreshold overrides the confidence gate.
func WithThreshold(t float64) Option {
	return func(a *Agent) { a.threshold = t }
}

// WithClock sets the clock used for today's date in prompts.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates an Agent.
func New(client llm.Client, opts ...Option) *Agent {
	a := &Agent{
		client:    client,
		threshold: DefaultThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Threshold returns the confidence gate.
func (a *Agent) Threshold() float64 {
	return a.threshold
}

func (a *Agent) today() string {
	return a.now().Format(DateLayout)
}

// call is one JSON-mode step of a workflow.
type call struct {
	step        string
	system      string
	user        string
	temperature float64
	effort      string
	maxTokens   int
	required    []string
}

func (a *Agent) ask(ctx context.Context, c call, out interface{}) error {
	timer := logging.StartTimer(logging.CategoryAgent, c.step)
	defer timer.Stop()

	resp, err := a.client.Chat(ctx, llm.ChatRequest{
		Messages:        []llm.Message{llm.System(c.system), llm.User(c.user)},
		JSONMode:        true,
		MaxTokens:       c.maxTokens,
		Temperature:     llm.Float(c.temperature),
		ReasoningEffort: c.effort,
	})
	if err != nil {
		logging.AgentError("Error during %s: %v", c.step, err)
		return fmt.Errorf("%s: %w", c.step, err)
	}
	if err := llm.DecodeRequired(resp.Content, out, c.required...); err != nil {
		logging.AgentError("Invalid %s output: %v", c.step, err)
		return fmt.Errorf("%s: %w", c.step, err)
	}
	return nil
}

// pyFloat renders v the way Python prints a float: 60 becomes "60.0".
func pyFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// pyList renders names the way Python prints a list of strings.
func pyList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

package patterns

import (
	"context"
	"fmt"

	"fileagent/internal/calendar"
	"fileagent/internal/llm"
	"fileagent/internal/logging"
)

const validateSystem = `Today is %s.
Analyze if the text given describes a calendar event.

Respond in JSON with this schema:
{
    "description": "Rephrase the description clearly.",
    "is_event": "A boolean value (true or false) that indicates whether it is an event.",
    "confidence_score": "A float between 0 and 1 that indicates the model's confidence level in this description being a calendar event."
}`

const extractSystem = `Today is %s.
Extract detailed event information. When dates reference 'next Tuesday' or similar relative dates, use this current date as reference.

Respond in JSON with this schema:
{
    "name": "Name/Title of this event.",
    "date": "Date & Time of the event. Use ISO 8601 to format this value.",
    "duration": "Duration of the event, in minutes.",
    "participants": "List of participants (names) attending the event."
}`

const confirmSystem = `Generate a natural confirmation message for the event. Sign of with your name; AI Assistant.

Respond in JSON with this schema:
{
    "confirmation_message": "A message confirming the event has been scheduled.",
    "calendar_link": "An optional link (if available) to the created calendar event."
}`

// EventValidation is the first chaining step.
type EventValidation struct {
	Description     string  `json:"description"`
	IsEvent         bool    `json:"is_event"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// EventDetails is the second chaining step.
type EventDetails struct {
	Name         string   `json:"name"`
	Date         string   `json:"date"`
	Duration     float64  `json:"duration"` // minutes
	Participants []string `json:"participants"`
}

// String renders the details as they are handed to the confirmation step.
func (d EventDetails) String() string {
	return fmt.Sprintf("name='%s' date='%s' duration=%s participants=%s",
		d.Name, d.Date, pyFloat(d.Duration), pyList(d.Participants))
}

// EventConfirmation is the third chaining step.
type EventConfirmation struct {
	Message      string `json:"confirmation_message"`
	CalendarLink string `json:"calendar_link,omitempty"`
}

// Validate asks whether input describes a calendar event.
func (a *Agent) Validate(ctx context.Context, input string) (*EventValidation, error) {
	logging.Agent("Start validating event description.")
	logging.AgentDebug("User description: %s", input)

	var v EventValidation
	err := a.ask(ctx, call{
		step:        "validate event description",
		system:      fmt.Sprintf(validateSystem, a.today()),
		user:        input,
		temperature: 0.7,
		effort:      "medium",
		maxTokens:   4096,
		required:    []string{"description", "is_event", "confidence_score"},
	}, &v)
	if err != nil {
		return nil, err
	}
	if err := llm.CheckUnit("confidence_score", v.ConfidenceScore); err != nil {
		return nil, err
	}

	logging.Agent("Event description validated successfully.")
	logging.AgentDebug("Validation result: Is Calendar Event - %v with confidence score of %v", v.IsEvent, v.ConfidenceScore)
	return &v, nil
}

// Extract parses event details from a validated description.
func (a *Agent) Extract(ctx context.Context, description string) (*EventDetails, error) {
	logging.Agent("Start extracting and parsing event details.")

	var d EventDetails
	err := a.ask(ctx, call{
		step:        "extract event details",
		system:      fmt.Sprintf(extractSystem, a.today()),
		user:        description,
		temperature: 0.7,
		effort:      "medium",
		maxTokens:   4096,
		required:    []string{"name", "date", "duration", "participants"},
	}, &d)
	if err != nil {
		return nil, err
	}

	logging.Agent("Event details extracted and parsed successfully.")
	logging.AgentDebug("Extracted Event Details: Name - %s, Date - %s, Duration - %s, Participants - %v", d.Name, d.Date, pyFloat(d.Duration), d.Participants)
	return &d, nil
}

// Confirm writes a confirmation message for the event. A non-empty link is
// offered to the model alongside the details.
func (a *Agent) Confirm(ctx context.Context, d EventDetails, link string) (*EventConfirmation, error) {
	logging.Agent("Start generating event confirmation message.")

	user := d.String()
	if link != "" {
		user += fmt.Sprintf(" calendar_link='%s'", link)
	}

	var c EventConfirmation
	err := a.ask(ctx, call{
		step:        "generate confirmation",
		system:      confirmSystem,
		user:        user,
		temperature: 0.7,
		effort:      "medium",
		maxTokens:   4096,
		required:    []string{"confirmation_message"},
	}, &c)
	if err != nil {
		return nil, err
	}

	logging.Agent("Event confirmation message generated successfully.")
	logging.AgentDebug("Confirmation Message: %s, Calendar Link: %s", c.Message, orNA(c.CalendarLink))
	return &c, nil
}

// ProcessChain runs validate, gate, extract, confirm. A nil confirmation with
// a nil error means the input was not accepted as an event.
func (a *Agent) ProcessChain(ctx context.Context, input string) (*EventConfirmation, error) {
	logging.Agent("Processing calendar request.")
	logging.AgentDebug("User input: %s", input)

	v, err := a.Validate(ctx, input)
	if err != nil {
		return nil, err
	}
	if !v.IsEvent || v.ConfidenceScore < a.threshold {
		logging.AgentWarn("With description being marked as %v, and its confidence score of marking such result is %v", v.IsEvent, v.ConfidenceScore)
		logging.AgentWarn("The provided description is not recognized as a valid event.")
		return nil, nil
	}

	logging.Agent("Description validated as an event. Proceeding to extract details.")
	d, err := a.Extract(ctx, v.Description)
	if err != nil {
		return nil, err
	}

	var link string
	if a.store != nil {
		ev, err := a.store.Create(ctx, calendar.Event{
			Name:            d.Name,
			Date:            d.Date,
			DurationMinutes: d.Duration,
			Participants:    d.Participants,
			Description:     v.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store event: %w", err)
		}
		link = ev.Link()
	}

	c, err := a.Confirm(ctx, *d, link)
	if err != nil {
		return nil, err
	}
	if c.CalendarLink == "" {
		c.CalendarLink = link
	}

	logging.Agent("Calendar request processed successfully.")
	return c, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

package patterns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fileagent/internal/calendar"
	"fileagent/internal/llm"
	"fileagent/internal/logging"
)

// Request types produced by Classify.
const (
	RequestNewEvent    = "new_event"
	RequestModifyEvent = "modify_event"
	RequestOther       = "other"
)

const classifySystem = `Determine if this is a request to create a new calendar event or modify an existing one.

Respond in JSON format with this schema:
{
    "description": "rephrased the description clearly",
    "request_type": "one of the Literal type based on the description: new_event, modify_event, other",
    "confidence_score": "A float between 0 and 1 that indicates the model's confidence level in this description being a calendar event."
}`

const newEventSystem = `Today is %s.
Extract details for creating a new calendar event.

Respond in JSON format with this schema:
{
    "name": "Name of the new event.",
    "date": "Date & Time of the new event, in ISO 8601 format.",
    "duration": "Duration of the new event, in minutes.",
    "participants": "List of participants' names for the new event."
}`

const modifyEventSystem = `Today is %s.
Extract details for modifying an existing calendar event.

Respond in JSON format with this schema:
{
    "description": "Changes description for the event modification.",
    "updated_date": "Updated Date & Time of the event, in ISO 8601 format.",
    "participants_to_add": "List of participants' names to add to the event.",
    "participants_to_remove": "List of participants' names to remove from the event."
}`

// RequestType is the routing classification.
type RequestType struct {
	Description     string  `json:"description"`
	RequestType     string  `json:"request_type"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// NewEventDetails are extracted for new_event requests.
type NewEventDetails struct {
	Name         string   `json:"name"`
	Date         string   `json:"date"`
	Duration     float64  `json:"duration"` // minutes
	Participants []string `json:"participants"`
}

// ModifyEventDetails are extracted for modify_event requests.
type ModifyEventDetails struct {
	Description          string   `json:"description"`
	UpdatedDate          string   `json:"updated_date"`
	ParticipantsToAdd    []string `json:"participants_to_add"`
	ParticipantsToRemove []string `json:"participants_to_remove"`
}

// Result is what a routed handler reports back.
type Result struct {
	Success bool
	Message string
	Event   *calendar.Event // set when a store is configured
}

// Classify decides whether input creates, modifies or is unrelated to a
// calendar event.
func (a *Agent) Classify(ctx context.Context, input string) (*RequestType, error) {
	logging.Agent("Classifying request type...")
	logging.AgentDebug("Input description: %s", input)

	var rt RequestType
	err := a.ask(ctx, call{
		step:        "classify request",
		system:      classifySystem,
		user:        input,
		temperature: 0.7,
		effort:      "medium",
		maxTokens:   4096,
		required:    []string{"description", "request_type", "confidence_score"},
	}, &rt)
	if err != nil {
		return nil, err
	}

	switch rt.RequestType {
	case RequestNewEvent, RequestModifyEvent, RequestOther:
	default:
		return nil, &llm.ValidationError{
			Field:  "request_type",
			Reason: fmt.Sprintf("must be one of %s, %s, %s, got %q", RequestNewEvent, RequestModifyEvent, RequestOther, rt.RequestType),
		}
	}
	if err := llm.CheckUnit("confidence_score", rt.ConfidenceScore); err != nil {
		return nil, err
	}

	logging.Agent("Request classified successfully.")
	logging.AgentDebug("Classification result: The modified description is '%s', request type is '%s' with confidence score of %v", rt.Description, rt.RequestType, rt.ConfidenceScore)
	return &rt, nil
}

// HandleNewEvent extracts new event details and, with a store, saves them.
func (a *Agent) HandleNewEvent(ctx context.Context, description string) (*Result, error) {
	logging.Agent("Handling new event details extraction...")

	var d NewEventDetails
	err := a.ask(ctx, call{
		step:        "extract new event details",
		system:      fmt.Sprintf(newEventSystem, a.today()),
		user:        description,
		temperature: 0.7,
		effort:      "medium",
		maxTokens:   4096,
		required:    []string{"name", "date", "duration", "participants"},
	}, &d)
	if err != nil {
		return nil, err
	}

	logging.Agent("New event details extracted successfully.")
	logging.AgentDebug("New event details: The event '%s' is scheduled on %s for %s minutes with participants %v", d.Name, d.Date, pyFloat(d.Duration), d.Participants)

	res := &Result{
		Success: true,
		Message: fmt.Sprintf("New event created called: '%s', scheduled on %s for %s minutes with participants %s.",
			d.Name, d.Date, pyFloat(d.Duration), strings.Join(d.Participants, ", ")),
	}
	if a.store != nil {
		ev, err := a.store.Create(ctx, calendar.Event{
			Name:            d.Name,
			Date:            d.Date,
			DurationMinutes: d.Duration,
			Participants:    d.Participants,
			Description:     description,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store event: %w", err)
		}
		res.Event = ev
	}
	return res, nil
}

// HandleModifyEvent extracts the requested change and, with a store, applies
// it to the best matching stored event.
func (a *Agent) HandleModifyEvent(ctx context.Context, description string) (*Result, error) {
	logging.Agent("Handling modify event details extraction...")

	var d ModifyEventDetails
	err := a.ask(ctx, call{
		step:        "extract modify event details",
		system:      fmt.Sprintf(modifyEventSystem, a.today()),
		user:        description,
		temperature: 0.7,
		effort:      "medium",
		maxTokens:   4096,
		required:    []string{"description", "updated_date", "participants_to_add", "participants_to_remove"},
	}, &d)
	if err != nil {
		return nil, err
	}

	logging.Agent("Modify event details extracted successfully.")
	logging.AgentDebug("Modify event details: The event modification description is '%s', updated date is %s, participants to add: %v, participants to remove: %v",
		d.Description, d.UpdatedDate, d.ParticipantsToAdd, d.ParticipantsToRemove)

	res := &Result{
		Success: true,
		Message: fmt.Sprintf("Event modified with description: '%s', updated date: %s, participants to add: %s, participants to remove: %s.",
			d.Description, d.UpdatedDate, strings.Join(d.ParticipantsToAdd, ", "), strings.Join(d.ParticipantsToRemove, ", ")),
	}
	if a.store == nil {
		return res, nil
	}

	ev, err := a.store.ApplyChange(ctx, calendar.Change{
		Description: description + " " + d.Description,
		Date:        d.UpdatedDate,
		Add:         d.ParticipantsToAdd,
		Remove:      d.ParticipantsToRemove,
	})
	if errors.Is(err, calendar.ErrEventNotFound) {
		logging.AgentWarn("No stored event matches: %s", description)
		return &Result{Success: false, Message: fmt.Sprintf("No matching event found for: '%s'.", d.Description)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	res.Event = ev
	return res, nil
}

// Route classifies input and dispatches it. A nil result with a nil error
// means the request was not handled: low confidence or type "other".
func (a *Agent) Route(ctx context.Context, input string) (*Result, error) {
	_, res, err := a.RouteRequest(ctx, input)
	return res, err
}

// RouteRequest is Route that also returns the classification, which is set
// whenever Classify succeeded.
func (a *Agent) RouteRequest(ctx context.Context, input string) (*RequestType, *Result, error) {
	logging.Agent("Processing calendar request...")

	rt, err := a.Classify(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	if rt.ConfidenceScore < a.threshold {
		logging.AgentWarn("With low confidence score of %v, unable to process the request.", rt.ConfidenceScore)
		return rt, nil, nil
	}

	var res *Result
	switch rt.RequestType {
	case RequestNewEvent:
		res, err = a.HandleNewEvent(ctx, rt.Description)
	case RequestModifyEvent:
		res, err = a.HandleModifyEvent(ctx, rt.Description)
	default:
		logging.Agent("Request type is 'other'; no action taken.")
	}
	return rt, res, err
}

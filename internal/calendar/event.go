package calendar

import (
	"strings"
	"time"
	"unicode"
)

// Event is a stored calendar event.
type Event struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Date            string    `json:"date"` // ISO 8601 as produced by the model
	DurationMinutes float64   `json:"duration_minutes"`
	Participants    []string  `json:"participants"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Link returns the calendar link for the event.
func (e *Event) Link() string {
	return LinkScheme + e.ID
}

// Change describes a modification to an existing event.
type Change struct {
	Description string
	Date        string
	Add         []string
	Remove      []string
}

func (c Change) applyTo(ev *Event) {
	if c.Date != "" {
		ev.Date = c.Date
	}
	if c.Description != "" {
		ev.Description = c.Description
	}
	for _, name := range c.Add {
		name = strings.TrimSpace(name)
		if name != "" && indexFold(ev.Participants, name) < 0 {
			ev.Participants = append(ev.Participants, name)
		}
	}
	for _, name := range c.Remove {
		if i := indexFold(ev.Participants, strings.TrimSpace(name)); i >= 0 {
			ev.Participants = append(ev.Participants[:i], ev.Participants[i+1:]...)
		}
	}
	if ev.Participants == nil {
		ev.Participants = []string{}
	}
}

// BestMatch picks the event a change refers to. The event name mentioned in
// the change description scores highest, then individual name words and
// participants mentioned in the description or removal list. Ties go to the
// earlier event in events. Nil means nothing matched.
func BestMatch(events []*Event, c Change) *Event {
	text := strings.ToLower(c.Description)
	words := wordSet(text)
	for _, name := range c.Remove {
		words[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var (
		best      *Event
		bestScore int
	)
	for _, ev := range events {
		score := 0
		name := strings.ToLower(strings.TrimSpace(ev.Name))
		if name != "" && strings.Contains(text, name) {
			score += 3
		}
		for w := range wordSet(name) {
			if words[w] {
				score++
			}
		}
		for _, p := range ev.Participants {
			if words[strings.ToLower(p)] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = ev, score
		}
	}
	return best
}

var ignoredWords = map[string]bool{
	"the": true, "with": true, "and": true, "for": true, "our": true, "to": true,
}

func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) < 2 || ignoredWords[w] {
			continue
		}
		out[w] = true
	}
	return out
}

func indexFold(list []string, v string) int {
	for i, item := range list {
		if strings.EqualFold(item, v) {
			return i
		}
	}
	return -1
}

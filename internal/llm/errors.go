package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	// ErrNoContent is returned when the model produced no message content.
	ErrNoContent = errors.New("no response from LLM")

	// ErrNoChoices is returned when the API returned an empty choices array.
	ErrNoChoices = errors.New("no completion returned")

	// ErrNoToolCalls is returned when a tool-calling turn produced no calls.
	ErrNoToolCalls = errors.New("model did not return any tool calls")

	// ErrAPIKeyMissing is returned when a client is used without credentials.
	ErrAPIKeyMissing = errors.New("API key not configured")
)

// TransientError represents a temporary error that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent error that should not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient returns true if the error is transient and should be retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is fatal and should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// StatusError is a non-200 response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// classifyStatus wraps a StatusError as transient for 429 and 5xx.
func classifyStatus(code int, body string) error {
	err := &StatusError{StatusCode: code, Body: body}
	if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
		return NewTransientError(err)
	}
	return NewFatalError(err)
}

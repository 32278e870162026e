package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationRequired blocks submission until the profile has coordinates.
	ErrLocationRequired = errors.New("a saved location is required before submitting")
	// ErrSubmitInFlight is returned while another submission of the same draft is running.
	ErrSubmitInFlight = errors.New("a submission for this draft is already in progress")
	ErrDraftClosed    = errors.New("draft was closed")
	ErrNotOwner       = errors.New("draft belongs to another user")
	ErrUnknownDial    = errors.New("unknown dial")
)

// SubmitRetryMessage is shown to the user for any transport or server failure.
const SubmitRetryMessage = "We couldn't submit your request. Please try again."

// ValidationError is a structural problem found before any network call.
type ValidationError struct {
	Step    int    `json:"step"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: %s: %s", e.Step, e.Field, e.Message)
}

func invalid(step int, field, msg string) *ValidationError {
	return &ValidationError{Step: step, Field: field, Message: msg}
}

// SubmitError wraps a failure from the request collaborator. The draft is kept.
type SubmitError struct {
	Category string
	Err      error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit %s: %v", e.Category, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Message is the user-facing text.
func (e *SubmitError) Message() string { return SubmitRetryMessage }

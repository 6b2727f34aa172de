package survey

import (
	"errors"
	"fmt"
)

// ErrNoObjectFound is returned when a response contains no {...} span.
var ErrNoObjectFound = errors.New("no JSON object found in response")

// ErrMalformedJSON matches any *MalformedJSONError via errors.Is.
var ErrMalformedJSON = errors.New("malformed JSON in response")

// MalformedJSONError carries the span that failed to parse.
type MalformedJSONError struct {
	Span string
	Err  error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON in response: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

func (e *MalformedJSONError) Is(target error) bool { return target == ErrMalformedJSON }

// ExternalCallError wraps a failure from the page reader.
type ExternalCallError struct {
	Page int
	Err  error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("page %d: model call failed: %v", e.Page, e.Err)
}

func (e *ExternalCallError) Unwrap() error { return e.Err }

// FailureKind classifies a page that contributed no answers.
type FailureKind string

const (
	FailureExternalCall  FailureKind = "external_call"
	FailureNoObject      FailureKind = "no_object"
	FailureMalformedJSON FailureKind = "malformed_json"
)

// PageFailure records why a page contributed nothing.
type PageFailure struct {
	Page     int         `json:"page"`
	Instance int         `json:"instance"`
	Kind     FailureKind `json:"kind"`
	Message  string      `json:"message"`
	Span     string      `json:"span,omitempty"`
}

// classify maps a page error to a PageFailure.
func classify(page, instance int, err error) PageFailure {
	f := PageFailure{Page: page, Instance: instance, Message: err.Error()}

	var malformed *MalformedJSONError
	switch {
	case errors.As(err, &malformed):
		f.Kind = FailureMalformedJSON
		f.Span = malformed.Span
	case errors.Is(err, ErrNoObjectFound):
		f.Kind = FailureNoObject
	default:
		f.Kind = FailureExternalCall
	}
	return f
}

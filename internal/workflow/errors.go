package workflow

import (
	"errors"
	"fmt"
)

// ErrMalformedState is matched by every MalformedStateError.
var ErrMalformedState = errors.New("malformed conversation state")

// MalformedStateError reports a required state field that is missing or empty.
type MalformedStateError struct {
	Field  string
	Reason string
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("malformed conversation state: %s %s", e.Field, e.Reason)
}

func (e *MalformedStateError) Unwrap() error {
	return ErrMalformedState
}

func missingField(field string) error {
	return &MalformedStateError{Field: field, Reason: "must not be empty"}
}

// StepError wraps a failure inside a graph node. The run is aborted and no
// partial result is returned.
type StepError struct {
	Node      Node
	Iteration int
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed at iteration %d: %v", e.Node, e.Iteration, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

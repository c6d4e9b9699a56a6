// Package progress carries status updates from the review loop to the caller.
package progress

import "strings"

// Kind classifies an update.
type Kind int

const (
	// KindStatus is a short status line such as "Reviewer working...".
	KindStatus Kind = iota
	// KindStepDone reports the output of a finished step.
	KindStepDone
	// KindDecision reports a termination policy decision.
	KindDecision
)

// Update describes a progress message emitted by the review loop.
type Update struct {
	// Kind controls how the update is surfaced.
	Kind Kind
	// Step names the step that produced the update ("reviewer", "coder", ...).
	Step string
	// Message is the content to deliver to the user.
	Message string
	// Iteration is the reviewer iteration count when the update was emitted.
	Iteration int
	// AddNewLine appends a newline to Message if one is not already present.
	AddNewLine bool
}

// Callback receives progress updates.
type Callback func(Update) error

// Normalize applies the requested formatting.
func Normalize(update Update) Update {
	if update.AddNewLine && update.Message != "" && !strings.HasSuffix(update.Message, "\n") {
		update.Message += "\n"
	}
	return update
}

// Dispatch normalizes and sends the update if the callback is set.
func Dispatch(cb Callback, update Update) error {
	if cb == nil {
		return nil
	}
	return cb(Normalize(update))
}

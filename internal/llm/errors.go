package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generator invocation.
type ErrorKind string

const (
	// KindTimeout means the per-call timeout elapsed before the model answered.
	KindTimeout ErrorKind = "timeout"
	// KindCanceled means the caller's context was canceled.
	KindCanceled ErrorKind = "canceled"
	// KindStatus means the provider answered with a non-success status (auth, quota, ...).
	KindStatus ErrorKind = "status"
	// KindInvocation covers every other failure (network, decoding, SDK errors).
	KindInvocation ErrorKind = "invocation"
)

// GenerationError is returned by GuardedClient for every failed call.
type GenerationError struct {
	Kind  ErrorKind
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation with %s failed (%s): %v", e.Model, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StatusError carries a provider's HTTP status code.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Body)
}

// KindOf reports the classification of err, or "" when err is not a GenerationError.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// IsKind reports whether err is a GenerationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func classify(err error) ErrorKind {
	var statusErr *StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &statusErr):
		return KindStatus
	default:
		return KindInvocation
	}
}

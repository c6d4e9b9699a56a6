package workflow

import (
	"context"
	"fmt"
)

// DefaultMaxIterations bounds the loop at six reviewer runs.
const DefaultMaxIterations = 5

// Termination reasons.
const (
	ReasonResolved     = "resolved"
	ReasonIterationCap = "iteration_cap"
	ReasonBoth         = ReasonResolved + "+" + ReasonIterationCap
)

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Terminate  bool
	Resolved   bool
	CapReached bool
	Reason     string
}

// TerminationPolicy stops the loop when the classifier reports the feedback
// resolved or iterations exceed MaxIterations.
type TerminationPolicy struct {
	MaxIterations int
	Classifier    ResolutionClassifier
}

// NewTerminationPolicy validates the arguments.
func NewTerminationPolicy(maxIterations int, classifier ResolutionClassifier) (*TerminationPolicy, error) {
	if maxIterations < 0 {
		return nil, fmt.Errorf("max iterations must not be negative, got %d", maxIterations)
	}
	if classifier == nil {
		return nil, fmt.Errorf("termination policy requires a resolution classifier")
	}
	return &TerminationPolicy{MaxIterations: maxIterations, Classifier: classifier}, nil
}

// Decide evaluates both signals. The classifier is consulted even when the
// cap alone would terminate.
func (p *TerminationPolicy) Decide(ctx context.Context, state *ConversationState) (Decision, error) {
	if state == nil {
		return Decision{}, missingField("state")
	}

	resolved, err := p.Classifier.Resolved(ctx, state.Code(), state.Feedback())
	if err != nil {
		return Decision{}, err
	}
	capReached := state.Iterations() > p.MaxIterations

	d := Decision{
		Terminate:  resolved || capReached,
		Resolved:   resolved,
		CapReached: capReached,
	}
	switch {
	case resolved && capReached:
		d.Reason = ReasonBoth
	case resolved:
		d.Reason = ReasonResolved
	case capReached:
		d.Reason = ReasonIterationCap
	}
	return d, nil
}

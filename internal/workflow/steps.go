package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/codefionn/codereview/internal/llm"
)

// Step executes one graph node against the state.
type Step interface {
	Node() Node
	Execute(ctx context.Context, state *ConversationState) error
}

type generator struct {
	client      llm.Client
	temperature float64
}

func (g generator) generate(ctx context.Context, prompt string) (string, error) {
	if g.temperature <= 0 {
		return g.client.Complete(ctx, prompt)
	}

	resp, err := g.client.CompleteWithRequest(ctx, &llm.CompletionRequest{
		Messages:    []*llm.Message{{Role: "user", Content: prompt}},
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// ReviewerStep asks for feedback on the current code. Any output, including
// an empty string, is accepted verbatim.
type ReviewerStep struct {
	gen generator
}

// NewReviewerStep creates the reviewer node.
func NewReviewerStep(client llm.Client, temperature float64) *ReviewerStep {
	return &ReviewerStep{gen: generator{client: client, temperature: temperature}}
}

func (s *ReviewerStep) Node() Node { return NodeReviewer }

func (s *ReviewerStep) Execute(ctx context.Context, state *ConversationState) error {
	prompt, err := renderPrompt(reviewerTemplate, promptData{
		Specialization: state.Specialization(),
		Code:           state.Code(),
	})
	if err != nil {
		return err
	}

	feedback, err := s.gen.generate(ctx, prompt)
	if err != nil {
		return err
	}
	state.recordReview(feedback)
	return nil
}

// CoderStep rewrites the code from the latest feedback. The output replaces
// the code without any syntax check.
type CoderStep struct {
	gen generator
}

// NewCoderStep creates the coder node.
func NewCoderStep(client llm.Client, temperature float64) *CoderStep {
	return &CoderStep{gen: generator{client: client, temperature: temperature}}
}

func (s *CoderStep) Node() Node { return NodeCoder }

func (s *CoderStep) Execute(ctx context.Context, state *ConversationState) error {
	prompt, err := renderPrompt(coderTemplate, promptData{
		Specialization: state.Specialization(),
		Feedback:       state.Feedback(),
		Code:           state.Code(),
	})
	if err != nil {
		return err
	}

	code, err := s.gen.generate(ctx, prompt)
	if err != nil {
		return err
	}
	state.recordRevision(code)
	return nil
}

// FinalizerStep rates the transcript and compares the final code to the
// baseline with two independent calls.
type FinalizerStep struct {
	gen generator
}

// NewFinalizerStep creates the finalizer node.
func NewFinalizerStep(client llm.Client, temperature float64) *FinalizerStep {
	return &FinalizerStep{gen: generator{client: client, temperature: temperature}}
}

func (s *FinalizerStep) Node() Node { return NodeFinalizer }

func (s *FinalizerStep) Execute(ctx context.Context, state *ConversationState) error {
	if state.Finalized() {
		return errAlreadyFinalized
	}

	ratingPrompt, err := renderPrompt(ratingTemplate, promptData{History: state.History()})
	if err != nil {
		return err
	}
	rating, err := s.gen.generate(ctx, ratingPrompt)
	if err != nil {
		return fmt.Errorf("rating: %w", err)
	}

	comparisonPrompt, err := renderPrompt(comparisonTemplate, promptData{
		Code:     state.Code(),
		Baseline: state.Baseline(),
	})
	if err != nil {
		return err
	}
	comparison, err := s.gen.generate(ctx, comparisonPrompt)
	if err != nil {
		return fmt.Errorf("comparison: %w", err)
	}

	return state.finalize(rating, comparison)
}

// bootstrap generates the seed code from the problem statement with one
// unconditioned call.
func bootstrap(ctx context.Context, gen generator, problem string) (string, error) {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return "", missingField("problem")
	}
	return gen.generate(ctx, problem)
}

package workflow

import (
	"errors"
	"strings"
)

// Role tags a transcript block.
type Role string

const (
	RoleSeed     Role = "SEED"
	RoleReviewer Role = "REVIEWER"
	RoleCoder    Role = "CODER"
)

// Block is one tagged entry of the transcript.
type Block struct {
	Role    Role
	Content string
}

var errAlreadyFinalized = errors.New("conversation state already finalized")

// ConversationState is the record threaded through one run. Only the steps in
// this package mutate it; callers read it through the accessors.
type ConversationState struct {
	code           string
	feedback       string
	transcript     []Block
	specialization string
	iterations     int
	baseline       string

	rating     string
	comparison string
	finalized  bool
}

// NewConversationState validates the inputs and returns a state at iteration 0
// whose transcript starts with the seed code. An empty baseline defaults to code.
func NewConversationState(code, specialization, baseline string) (*ConversationState, error) {
	if strings.TrimSpace(code) == "" {
		return nil, missingField("code")
	}
	if strings.TrimSpace(specialization) == "" {
		return nil, missingField("specialization")
	}
	if baseline == "" {
		baseline = code
	}

	return &ConversationState{
		code:           code,
		transcript:     []Block{{Role: RoleSeed, Content: code}},
		specialization: strings.TrimSpace(specialization),
		baseline:       baseline,
	}, nil
}

// Code returns the current candidate code.
func (s *ConversationState) Code() string { return s.code }

// Feedback returns the latest reviewer output.
func (s *ConversationState) Feedback() string { return s.feedback }

// Specialization returns the label injected into reviewer and coder prompts.
func (s *ConversationState) Specialization() string { return s.specialization }

// Iterations returns the number of reviewer executions so far.
func (s *ConversationState) Iterations() int { return s.iterations }

// Baseline returns the reference code the final code is compared against.
func (s *ConversationState) Baseline() string { return s.baseline }

// Rating returns the finalizer's rating of the review cycle.
func (s *ConversationState) Rating() string { return s.rating }

// ComparisonSummary returns the finalizer's comparison of final and baseline code.
func (s *ConversationState) ComparisonSummary() string { return s.comparison }

// Finalized reports whether the finalizer has run.
func (s *ConversationState) Finalized() bool { return s.finalized }

// Transcript returns a copy of the tagged blocks in execution order.
func (s *ConversationState) Transcript() []Block {
	return append([]Block(nil), s.transcript...)
}

// History renders the transcript as a single string.
func (s *ConversationState) History() string {
	return renderTranscript(s.transcript)
}

// Clone returns an independent copy.
func (s *ConversationState) Clone() *ConversationState {
	c := *s
	c.transcript = s.Transcript()
	return &c
}

func (s *ConversationState) recordReview(feedback string) {
	s.iterations++
	s.feedback = feedback
	s.transcript = append(s.transcript, Block{Role: RoleReviewer, Content: feedback})
}

func (s *ConversationState) recordRevision(code string) {
	s.code = code
	s.transcript = append(s.transcript, Block{Role: RoleCoder, Content: code})
}

func (s *ConversationState) finalize(rating, comparison string) error {
	if s.finalized {
		return errAlreadyFinalized
	}
	s.rating = rating
	s.comparison = comparison
	s.finalized = true
	return nil
}

package llm

import (
	"context"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest represents a completion request
type CompletionRequest struct {
	Messages     []*Message `json:"messages"`
	Temperature  float64    `json:"temperature"`
	MaxTokens    int        `json:"max_tokens,omitempty"`
	SystemPrompt string     `json:"system_prompt,omitempty"`
}

// CompletionResponse represents a completion response
type CompletionResponse struct {
	Content    string                 `json:"content"`
	StopReason string                 `json:"stop_reason"`
	Usage      map[string]interface{} `json:"usage,omitempty"` // Provider-specific usage data
}

// Client is the prompt-in, text-out boundary to a hosted model.
type Client interface {
	// CompleteWithRequest sends a completion request and returns the response
	CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
	// Complete is a simplified version for single prompt
	Complete(ctx context.Context, prompt string) (string, error)
	// GetModelName returns the model name
	GetModelName() string
}

// userPrompt builds the single-message request used by every Complete implementation.
func userPrompt(prompt string, temperature float64) *CompletionRequest {
	return &CompletionRequest{
		Messages:    []*Message{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}
}

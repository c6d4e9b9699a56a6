package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ScriptRule answers prompts containing Contains. Responses are returned in
// order; the last one repeats once the list is exhausted.
type ScriptRule struct {
	Contains  string
	Responses []string
	Err       error
}

// ScriptedClient is a deterministic Client for tests and dry runs. The first
// matching rule wins; unmatched prompts get Fallback.
type ScriptedClient struct {
	Model    string
	Rules    []ScriptRule
	Fallback string

	mu      sync.Mutex
	hits    map[int]int
	prompts []string
}

func (c *ScriptedClient) GetModelName() string {
	if c.Model == "" {
		return "scripted"
	}
	return c.Model
}

func (c *ScriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.prompts = append(c.prompts, prompt)
	if c.hits == nil {
		c.hits = make(map[int]int)
	}

	for i, rule := range c.Rules {
		if !strings.Contains(prompt, rule.Contains) {
			continue
		}
		if rule.Err != nil {
			return "", rule.Err
		}
		if len(rule.Responses) == 0 {
			return "", nil
		}
		n := c.hits[i]
		c.hits[i] = n + 1
		if n >= len(rule.Responses) {
			n = len(rule.Responses) - 1
		}
		return rule.Responses[n], nil
	}
	return c.Fallback, nil
}

func (c *ScriptedClient) CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("scripted completion requires at least one message")
	}
	out, err := c.Complete(ctx, req.Messages[len(req.Messages)-1].Content)
	if err != nil {
		return nil, err
	}
	return &CompletionResponse{Content: out, StopReason: "stop"}, nil
}

// Prompts returns every prompt received so far, in order.
func (c *ScriptedClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// CountContaining returns how many received prompts contain substr.
func (c *ScriptedClient) CountContaining(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, p := range c.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

var _ Client = (*ScriptedClient)(nil)

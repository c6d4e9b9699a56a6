package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// rateLimitedClient wraps another Client and spaces out requests.
type rateLimitedClient struct {
	delegate Client
	limiter  *rate.Limiter
}

// NewRateLimitedClient returns a Client that allows at most requests calls
// per window. A non-positive limit or window returns base unchanged.
func NewRateLimitedClient(base Client, requests int, window time.Duration) Client {
	if base == nil || requests <= 0 || window <= 0 {
		return base
	}
	interval := window / time.Duration(requests)
	return &rateLimitedClient{
		delegate: base,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// wait blocks until the limiter admits a request. Failures are returned as
// GenerationError; a wait that cannot finish before ctx's deadline is a timeout.
func (c *rateLimitedClient) wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.limiter.Wait(ctx)
	if err == nil {
		return nil
	}

	kind := classify(err)
	if ctxErr := ctx.Err(); ctxErr != nil {
		kind = classify(ctxErr)
	} else if _, ok := ctx.Deadline(); ok {
		kind = KindTimeout
	}
	return &GenerationError{
		Kind:  kind,
		Model: c.delegate.GetModelName(),
		Err:   fmt.Errorf("rate limit wait: %w", err),
	}
}

func (c *rateLimitedClient) CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.delegate.CompleteWithRequest(ctx, req)
}

func (c *rateLimitedClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	return c.delegate.Complete(ctx, prompt)
}

func (c *rateLimitedClient) GetModelName() string {
	return c.delegate.GetModelName()
}

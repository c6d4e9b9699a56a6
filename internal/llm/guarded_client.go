package llm

import (
	"context"
	"fmt"
	"time"
)

// GuardedClient bounds every call with a timeout and turns failures into
// GenerationError values. A zero timeout leaves calls unbounded, but caller
// cancellation is still honored even if the delegate ignores its context.
type GuardedClient struct {
	delegate Client
	timeout  time.Duration
}

// NewGuardedClient wraps base. base must not be nil.
func NewGuardedClient(base Client, timeout time.Duration) *GuardedClient {
	if timeout < 0 {
		timeout = 0
	}
	return &GuardedClient{delegate: base, timeout: timeout}
}

// Timeout returns the per-call timeout (0 means none).
func (c *GuardedClient) Timeout() time.Duration {
	return c.timeout
}

func (c *GuardedClient) GetModelName() string {
	return c.delegate.GetModelName()
}

func (c *GuardedClient) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	err := c.guard(ctx, func(callCtx context.Context) error {
		var err error
		out, err = c.delegate.Complete(callCtx, prompt)
		return err
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (c *GuardedClient) CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, c.wrap(fmt.Errorf("completion request cannot be nil"))
	}

	var out *CompletionResponse
	err := c.guard(ctx, func(callCtx context.Context) error {
		var err error
		out, err = c.delegate.CompleteWithRequest(callCtx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// guard runs call on its own goroutine so a delegate that blocks without
// watching its context cannot outlive the deadline. Such a goroutine is
// abandoned and finishes in the background.
func (c *GuardedClient) guard(ctx context.Context, call func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	defer cancel()

	if err := callCtx.Err(); err != nil {
		return c.wrap(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- call(callCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return c.wrap(err)
		}
		return nil
	case <-callCtx.Done():
		return c.wrap(callCtx.Err())
	}
}

func (c *GuardedClient) wrap(err error) error {
	return &GenerationError{
		Kind:  classify(err),
		Model: c.delegate.GetModelName(),
		Err:   err,
	}
}

var _ Client = (*GuardedClient)(nil)

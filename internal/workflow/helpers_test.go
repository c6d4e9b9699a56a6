package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/codefionn/codereview/internal/llm"
	"github.com/codefionn/codereview/internal/progress"
)

const seedCode = "import pandas as pd\nprint('train')"

// newLoopClient scripts a generator: resolution answers are returned in order,
// the last one repeating.
func newLoopClient(resolution ...string) *llm.ScriptedClient {
	return &llm.ScriptedClient{
		Rules: []llm.ScriptRule{
			{Contains: ResolutionPromptMarker, Responses: resolution},
			{Contains: ReviewerPromptMarker, Responses: []string{"- feedback round 1", "- feedback round 2", "- feedback round 3", "- feedback round 4", "- feedback round 5", "- feedback round 6"}},
			{Contains: CoderPromptMarker, Responses: []string{"code v1", "code v2", "code v3", "code v4", "code v5"}},
			{Contains: RatingPromptMarker, Responses: []string{"8/10, the coder addressed most comments."}},
			{Contains: ComparisonPromptMarker, Responses: []string{"Revised Code: 9/10\nActual Code: 5/10"}},
		},
		Fallback: seedCode,
	}
}

type recorder struct {
	mu      sync.Mutex
	updates []progress.Update
}

func (r *recorder) callback(u progress.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	return nil
}

func (r *recorder) ofKind(kind progress.Kind) []progress.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progress.Update
	for _, u := range r.updates {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}

type fixedClassifier struct {
	resolved bool
	err      error
	calls    int
}

func (c *fixedClassifier) Resolved(context.Context, string, string) (bool, error) {
	c.calls++
	return c.resolved, c.err
}

type blockingClient struct{}

func (blockingClient) GetModelName() string { return "blocking" }

func (blockingClient) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (c blockingClient) CompleteWithRequest(ctx context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	_, err := c.Complete(ctx, "")
	return nil, err
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

package llm

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitedClientEnforcesInterval(t *testing.T) {
	base := &ScriptedClient{Fallback: "ok"}
	// 1200 rpm = one request every 50ms.
	client := NewRateLimitedClient(base, 1200, time.Minute)

	ctx := context.Background()
	start := time.Now()
	if _, err := client.Complete(ctx, "first"); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if _, err := client.Complete(ctx, "second"); err != nil {
		t.Fatalf("second completion failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed+5*time.Millisecond < 50*time.Millisecond {
		t.Fatalf("expected delay of at least 50ms, got %v", elapsed)
	}
	if got := len(base.Prompts()); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestRateLimitedClientPassthroughWhenDisabled(t *testing.T) {
	base := &ScriptedClient{}

	if client := NewRateLimitedClient(base, 0, time.Minute); client != Client(base) {
		t.Fatalf("expected rate limiter to return base client when disabled")
	}
	if client := NewRateLimitedClient(base, 10, 0); client != Client(base) {
		t.Fatalf("expected rate limiter to return base client for a zero window")
	}
}

func TestRateLimitedClientRespectsContext(t *testing.T) {
	base := &ScriptedClient{Fallback: "ok"}
	client := NewRateLimitedClient(base, 1, time.Minute)

	if _, err := client.Complete(context.Background(), "first"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.CompleteWithRequest(ctx, userPrompt("second", 0))
	if err == nil {
		t.Fatalf("expected second request to be throttled and respect context timeout")
	}
	if !IsKind(err, KindTimeout) {
		t.Fatalf("expected timeout kind, got %q (%v)", KindOf(err), err)
	}
	if got := len(base.Prompts()); got != 1 {
		t.Fatalf("expected only first request to reach delegate, got %d", got)
	}
	if client.GetModelName() != "scripted" {
		t.Errorf("GetModelName() = %q", client.GetModelName())
	}
}

func TestRateLimitedClientCanceledWait(t *testing.T) {
	base := &ScriptedClient{Fallback: "ok"}
	client := NewRateLimitedClient(base, 1, time.Minute)

	if _, err := client.Complete(context.Background(), "first"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "second")
	if !IsKind(err, KindCanceled) {
		t.Fatalf("expected canceled kind, got %q (%v)", KindOf(err), err)
	}
}

func TestRateLimitedGuardedClientTimeoutExcludesWait(t *testing.T) {
	base := &ScriptedClient{Fallback: "ok"}
	// The timeout is shorter than the interval, so it must only bound the call itself.
	client := NewRateLimitedClient(NewGuardedClient(base, 20*time.Millisecond), 1, 100*time.Millisecond)

	for i := 0; i < 2; i++ {
		out, err := client.Complete(context.Background(), "prompt")
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if out != "ok" {
			t.Fatalf("call %d returned %q", i, out)
		}
	}
}

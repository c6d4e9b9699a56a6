package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRouterCompleteSendsUserPrompt(t *testing.T) {
	var captured openRouterChatRequest
	httpClient := newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "https://openrouter.test/api/v1/chat/completions", req.URL.String())
		assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
		assert.Equal(t, openRouterAppTitle, req.Header.Get("X-Title"))

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		return newTestHTTPResponse(req, http.StatusOK, `{
			"id": "gen-1",
			"model": "google/gemini-2.0-flash-001",
			"usage": {"total_tokens": 12},
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "def f(): pass"}}]
		}`), nil
	})

	client, err := newOpenRouterClient("sk-test", "", "https://openrouter.test/api/v1/", httpClient)
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), "review this")
	require.NoError(t, err)
	assert.Equal(t, "def f(): pass", out)

	assert.Equal(t, defaultOpenRouterModel, captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "review this", captured.Messages[0].Content)
	assert.Nil(t, captured.Temperature)
}

func TestOpenRouterSystemPromptAndOptions(t *testing.T) {
	var captured openRouterChatRequest
	httpClient := newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(body, &captured)
		return newTestHTTPResponse(req, http.StatusOK, `{"choices": [{"message": {"role": "assistant", "content": [{"type": "text", "text": "a"}, {"type": "text", "text": "b"}]}}]}`), nil
	})

	client, err := newOpenRouterClient("sk-test", "openai/gpt-4o", openRouterAPIBaseURL, httpClient)
	require.NoError(t, err)

	resp, err := client.CompleteWithRequest(context.Background(), &CompletionRequest{
		SystemPrompt: "be terse",
		Messages:     []*Message{{Content: "hello"}},
		Temperature:  0.2,
		MaxTokens:    64,
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", resp.Content)
	assert.Equal(t, "stop", resp.StopReason)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	require.NotNil(t, captured.Temperature)
	assert.InDelta(t, 0.2, *captured.Temperature, 1e-9)
	assert.Equal(t, 64, captured.MaxTokens)
}

func TestOpenRouterStatusError(t *testing.T) {
	httpClient := newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return newTestHTTPResponse(req, http.StatusTooManyRequests, `{"error":{"message":"quota exceeded"}}`), nil
	})

	client, err := newOpenRouterClient("sk-test", "", openRouterAPIBaseURL, httpClient)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hi")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.Contains(t, statusErr.Body, "quota exceeded")
}

func TestOpenRouterEmbeddedError(t *testing.T) {
	httpClient := newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return newTestHTTPResponse(req, http.StatusOK, `{"error":{"code":502,"message":"upstream unavailable"}}`), nil
	})

	client, err := newOpenRouterClient("sk-test", "", openRouterAPIBaseURL, httpClient)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hi")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 502, statusErr.Code)
}

func TestOpenRouterNoChoices(t *testing.T) {
	httpClient := newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return newTestHTTPResponse(req, http.StatusOK, `{"choices": []}`), nil
	})

	client, err := newOpenRouterClient("sk-test", "", openRouterAPIBaseURL, httpClient)
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOpenRouterRequiresAPIKey(t *testing.T) {
	_, err := NewOpenRouterClient("  ", "")
	assert.Error(t, err)
}

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviders(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "google", "openai", "openrouter"}, Providers())
	assert.True(t, IsKnownProvider(" Google "))
	assert.False(t, IsKnownProvider("bard"))
}

func TestProviderDefaults(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", DefaultModel(ProviderGoogle))
	assert.Equal(t, "GOOGLE_API_KEY", APIKeyEnvVar(ProviderGoogle))
	assert.Equal(t, "OPENROUTER_API_KEY", APIKeyEnvVar("OpenRouter"))
	assert.Empty(t, DefaultModel("unknown"))
}

func TestNewClient(t *testing.T) {
	for _, provider := range []string{ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter} {
		t.Run(provider, func(t *testing.T) {
			client, err := NewClient(ClientOptions{Provider: provider, APIKey: "key", Model: "m"})
			require.NoError(t, err)
			assert.Contains(t, client.GetModelName(), "m")
		})
	}

	_, err := NewClient(ClientOptions{Provider: "nope", APIKey: "key"})
	assert.ErrorContains(t, err, "unknown provider")

	_, err = NewClient(ClientOptions{Provider: ProviderGoogle})
	assert.ErrorContains(t, err, "API key")
}

func TestScriptedClient(t *testing.T) {
	boom := errors.New("quota")
	client := &ScriptedClient{
		Rules: []ScriptRule{
			{Contains: "review", Responses: []string{"first", "second"}},
			{Contains: "fail", Err: boom},
			{Contains: "empty"},
		},
		Fallback: "fallback",
	}
	ctx := context.Background()

	for _, want := range []string{"first", "second", "second"} {
		got, err := client.Complete(ctx, "please review")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := client.Complete(ctx, "fail now")
	assert.ErrorIs(t, err, boom)

	got, err := client.Complete(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = client.Complete(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	resp, err := client.CompleteWithRequest(ctx, userPrompt("review again", 0))
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)

	assert.Equal(t, 4, client.CountContaining("review"))
	assert.Len(t, client.Prompts(), 7)

	_, err = client.CompleteWithRequest(ctx, &CompletionRequest{})
	assert.Error(t, err)
}

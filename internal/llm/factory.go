package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Supported provider names.
const (
	ProviderGoogle     = "google"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
)

type providerInfo struct {
	defaultModel string
	apiKeyEnv    string
}

var providers = map[string]providerInfo{
	ProviderGoogle:     {defaultModel: defaultGoogleModel, apiKeyEnv: "GOOGLE_API_KEY"},
	ProviderOpenAI:     {defaultModel: defaultOpenAIModel, apiKeyEnv: "OPENAI_API_KEY"},
	ProviderAnthropic:  {defaultModel: defaultAnthropicModel, apiKeyEnv: "ANTHROPIC_API_KEY"},
	ProviderOpenRouter: {defaultModel: defaultOpenRouterModel, apiKeyEnv: "OPENROUTER_API_KEY"},
}

// Providers returns the supported provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnownProvider reports whether name is a supported provider.
func IsKnownProvider(name string) bool {
	_, ok := providers[normalizeProvider(name)]
	return ok
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return providers[normalizeProvider(provider)].defaultModel
}

// APIKeyEnvVar returns the environment variable holding the provider's API key.
func APIKeyEnvVar(provider string) string {
	return providers[normalizeProvider(provider)].apiKeyEnv
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the endpoint (openai provider only).
	BaseURL string
}

// NewClient creates a provider client. It does not add timeouts or throttling.
func NewClient(opts ClientOptions) (Client, error) {
	switch normalizeProvider(opts.Provider) {
	case ProviderGoogle:
		return NewGoogleAIClient(opts.APIKey, opts.Model)
	case ProviderOpenAI:
		return NewOpenAIClient(opts.APIKey, opts.Model, opts.BaseURL)
	case ProviderAnthropic:
		return NewAnthropicClient(opts.APIKey, opts.Model)
	case ProviderOpenRouter:
		return NewOpenRouterClient(opts.APIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: %s)", opts.Provider, strings.Join(Providers(), ", "))
	}
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/codereview/internal/workflow"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "google", cfg.Provider)
	assert.Equal(t, "python", cfg.Specialization)
	assert.Equal(t, DefaultProblem, cfg.Problem)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, workflow.ClassifierKeyword, cfg.Classifier)
	assert.Equal(t, time.Duration(0), cfg.CallTimeout())
	assert.Equal(t, "gemini-2.0-flash", cfg.ResolvedModel())
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().MaxIterations, cfg.MaxIterations)
}

func TestLoadOverridesProvidedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"provider": "openrouter",
		"model": "openai/gpt-4o",
		"specialization": "go",
		"max_iterations": 2,
		"log_level": ""
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "openai/gpt-4o", cfg.ResolvedModel())
	assert.Equal(t, "go", cfg.Specialization)
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.Equal(t, DefaultProblem, cfg.Problem, "unset fields keep defaults")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"CODEREVIEW_PROVIDER":             "anthropic",
		"CODEREVIEW_MAX_ITERATIONS":       "3",
		"CODEREVIEW_CALL_TIMEOUT_SECONDS": "30",
		"CODEREVIEW_LOG_LEVEL":            "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 3, cfg.MaxIterations)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "python", cfg.Specialization)

	err = cfg.ApplyEnv(envMap(map[string]string{"CODEREVIEW_REQUESTS_PER_MINUTE": "many"}))
	assert.ErrorContains(t, err, "CODEREVIEW_REQUESTS_PER_MINUTE")
}

func TestResolveAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	env := envMap(map[string]string{"GOOGLE_API_KEY": " from-env ", "OPENAI_API_KEY": "openai-key"})

	assert.Equal(t, "from-env", cfg.ResolveAPIKey(env))

	cfg.Provider = "openai"
	assert.Equal(t, "openai-key", cfg.ResolveAPIKey(env))

	cfg.APIKey = "explicit"
	assert.Equal(t, "explicit", cfg.ResolveAPIKey(env))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown provider", func(c *Config) { c.Provider = "bard" }, "Provider"},
		{"empty specialization", func(c *Config) { c.Specialization = "" }, "Specialization"},
		{"negative iterations", func(c *Config) { c.MaxIterations = -1 }, "MaxIterations"},
		{"bad classifier", func(c *Config) { c.Classifier = "vibes" }, "Classifier"},
		{"strict classifier", func(c *Config) { c.Classifier = "Strict" }, ""},
		{"log level off", func(c *Config) { c.LogLevel = "off" }, ""},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel"},
		{"no problem and no file", func(c *Config) { c.Problem = "" }, "Problem"},
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }, "BaseURL"},
		{"code file replaces problem", func(c *Config) { c.Problem = ""; c.CodeFile = "main.py" }, ""},
		{"case-insensitive provider", func(c *Config) { c.Provider = " OpenAI " }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Specialization = "rust"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rust", loaded.Specialization)
}

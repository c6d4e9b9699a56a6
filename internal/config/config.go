package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/codefionn/codereview/internal/llm"
	"github.com/codefionn/codereview/internal/workflow"
	"github.com/go-playground/validator/v10"
)

const appName = "codereview"

// DefaultProblem is the fixed problem statement the seed code is generated from.
const DefaultProblem = "Generate code to train a Regression ML model using a tabular dataset following required preprocessing steps."

// Config represents application configuration
type Config struct {
	Provider           string  `json:"provider" validate:"required,provider"`
	Model              string  `json:"model"`
	APIKey             string  `json:"api_key,omitempty"`
	BaseURL            string  `json:"base_url,omitempty" validate:"omitempty,url"`
	Specialization     string  `json:"specialization" validate:"required"`
	Problem            string  `json:"problem" validate:"required_without=CodeFile"`
	CodeFile           string  `json:"code_file,omitempty"`
	MaxIterations      int     `json:"max_iterations" validate:"gte=0,lte=100"`
	CallTimeoutSeconds int     `json:"call_timeout_seconds" validate:"gte=0"`
	Classifier         string  `json:"classifier" validate:"classifier"`
	RequestsPerMinute  int     `json:"requests_per_minute" validate:"gte=0"`
	Temperature        float64 `json:"temperature" validate:"gte=0,lte=2"`
	LogLevel           string  `json:"log_level" validate:"oneof=debug info warn warning error none off"`
	LogPath            string  `json:"log_path"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
		return llm.IsKnownProvider(fl.Field().String())
	})
	_ = validate.RegisterValidation("classifier", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case workflow.ClassifierKeyword, workflow.ClassifierStrict:
			return true
		}
		return false
	})
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	default:
		if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
			return filepath.Join(configHome, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", appName)
	}
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Local", appName)
	default:
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", appName)
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:       llm.ProviderGoogle,
		Specialization: "python",
		Problem:        DefaultProblem,
		MaxIterations:  workflow.DefaultMaxIterations,
		Classifier:     workflow.ClassifierKeyword,
		LogLevel:       "info",
		LogPath:        filepath.Join(defaultStateDir(), appName+".log"),
	}
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// Load loads configuration from file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal into default config (overrides only provided fields)
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Classifier == "" {
		config.Classifier = workflow.ClassifierKeyword
	}

	return config, nil
}

// ApplyEnv overrides fields from CODEREVIEW_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	stringVars := map[string]*string{
		"CODEREVIEW_PROVIDER":       &c.Provider,
		"CODEREVIEW_MODEL":          &c.Model,
		"CODEREVIEW_BASE_URL":       &c.BaseURL,
		"CODEREVIEW_SPECIALIZATION": &c.Specialization,
		"CODEREVIEW_CLASSIFIER":     &c.Classifier,
		"CODEREVIEW_LOG_LEVEL":      &c.LogLevel,
		"CODEREVIEW_LOG_PATH":       &c.LogPath,
	}
	for name, field := range stringVars {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*field = v
		}
	}

	intVars := map[string]*int{
		"CODEREVIEW_MAX_ITERATIONS":       &c.MaxIterations,
		"CODEREVIEW_CALL_TIMEOUT_SECONDS": &c.CallTimeoutSeconds,
		"CODEREVIEW_REQUESTS_PER_MINUTE":  &c.RequestsPerMinute,
	}
	for name, field := range intVars {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", name, v, err)
		}
		*field = n
	}

	return nil
}

// ResolveAPIKey returns the configured key, falling back to the
// provider-specific environment variable.
func (c *Config) ResolveAPIKey(getenv func(string) string) string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if name := llm.APIKeyEnvVar(c.Provider); name != "" {
		return strings.TrimSpace(getenv(name))
	}
	return ""
}

// ResolvedModel returns Model or the provider default.
func (c *Config) ResolvedModel() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return llm.DefaultModel(c.Provider)
}

// CallTimeout returns the per-call generator timeout (0 means none).
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Classifier = strings.ToLower(strings.TrimSpace(c.Classifier))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid config: field %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// The file can hold an API key.
	return os.WriteFile(path, data, 0600)
}

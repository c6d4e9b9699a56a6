package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/codefionn/codereview/internal/config"
	"github.com/codefionn/codereview/internal/llm"
	"github.com/codefionn/codereview/internal/logger"
	"github.com/codefionn/codereview/internal/progress"
	"github.com/codefionn/codereview/internal/workflow"
)

// rateLimitWindow is the period -rpm is measured over.
var rateLimitWindow = time.Minute

type cliOptions struct {
	configPath string
	dryRun     bool
	saveConfig bool
	set        map[string]bool

	provider       string
	model          string
	specialization string
	problem        string
	codeFile       string
	maxIterations  int
	classifier     string
	timeoutSeconds int
	rpm            int
	logLevel       string
	logPath        string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	opts, err := parseCLIArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(opts, os.Getenv)
	if err != nil {
		return err
	}
	if opts.saveConfig {
		if err := cfg.Save(opts.configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(stderr, "Saved config to %s\n", opts.configPath)
		return nil
	}

	if initErr := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); initErr != nil {
		return fmt.Errorf("failed to initialize logger: %w", initErr)
	}
	defer func() {
		if err != nil {
			logger.Error("Fatal error: %v", err)
		}
		if closeErr := logger.Global().Close(); closeErr != nil {
			fmt.Fprintf(stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}()
	slog.SetDefault(slog.New(logger.NewSlogHandler(logger.Global())))
	slog.Info("codereview starting", "provider", cfg.Provider, "model", cfg.ResolvedModel(), "dry_run", opts.dryRun)

	client, err := buildClient(cfg, opts.dryRun, os.Getenv, promptForAPIKey)
	if err != nil {
		return err
	}

	runner, err := workflow.NewRunner(client, &workflow.RunnerConfig{
		MaxIterations: cfg.MaxIterations,
		Classifier:    cfg.Classifier,
		Temperature:   cfg.Temperature,
		Progress:      progressPrinter(stderr),
		Logger:        logger.Global(),
	})
	if err != nil {
		return err
	}

	var result *workflow.Result
	if cfg.CodeFile != "" {
		result, err = reviewFile(ctx, runner, cfg.CodeFile, cfg.Specialization)
	} else {
		result, err = runner.RunProblem(ctx, cfg.Problem, cfg.Specialization)
	}
	if err != nil {
		return err
	}

	if _, err := result.Report().WriteTo(stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func parseCLIArgs(args []string, output io.Writer) (*cliOptions, error) {
	fs := flag.NewFlagSet("codereview", flag.ContinueOnError)
	fs.SetOutput(output)

	defaults := config.DefaultConfig()
	opts := &cliOptions{set: make(map[string]bool)}
	fs.StringVar(&opts.configPath, "config", config.GetConfigPath(), "Path to the JSON config file")
	fs.StringVar(&opts.provider, "provider", "", "Provider name ("+strings.Join(llm.Providers(), ", ")+")")
	fs.StringVar(&opts.model, "model", "", "Model to use (defaults per provider)")
	fs.StringVar(&opts.specialization, "specialization", "", "Language or domain the reviewer and coder specialize in")
	fs.StringVar(&opts.problem, "problem", "", "Problem statement the seed code is generated from")
	fs.StringVar(&opts.codeFile, "code-file", "", "Review an existing file instead of generating seed code")
	fs.IntVar(&opts.maxIterations, "max-iterations", defaults.MaxIterations, "Stop once this many reviews have been exceeded (0 allows one review)")
	fs.StringVar(&opts.classifier, "classifier", defaults.Classifier, "Resolution check: "+workflow.ClassifierKeyword+" or "+workflow.ClassifierStrict)
	fs.IntVar(&opts.timeoutSeconds, "timeout", defaults.CallTimeoutSeconds, "Per-call generator timeout in seconds (0 disables)")
	fs.IntVar(&opts.rpm, "rpm", defaults.RequestsPerMinute, "Maximum generator requests per minute (0 disables)")
	fs.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error, none)")
	fs.StringVar(&opts.logPath, "log-path", "", "Log file path, or - for stderr")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Use a scripted generator instead of a hosted model")
	fs.BoolVar(&opts.saveConfig, "save-config", false, "Write the merged configuration to -config and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: codereview [options]\n\n")
		fmt.Fprintln(fs.Output(), "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nDefaults shown are built in; the config file and CODEREVIEW_* variables override them.")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, nil
}

// loadConfig layers file, environment and explicitly set flags, then validates.
func loadConfig(opts *cliOptions, getenv func(string) string) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	stringFlags := map[string]struct {
		value string
		field *string
	}{
		"provider":       {opts.provider, &cfg.Provider},
		"model":          {opts.model, &cfg.Model},
		"specialization": {opts.specialization, &cfg.Specialization},
		"problem":        {opts.problem, &cfg.Problem},
		"code-file":      {opts.codeFile, &cfg.CodeFile},
		"classifier":     {opts.classifier, &cfg.Classifier},
		"log-level":      {opts.logLevel, &cfg.LogLevel},
		"log-path":       {opts.logPath, &cfg.LogPath},
	}
	for name, f := range stringFlags {
		if opts.set[name] {
			*f.field = f.value
		}
	}

	intFlags := map[string]struct {
		value int
		field *int
	}{
		"max-iterations": {opts.maxIterations, &cfg.MaxIterations},
		"timeout":        {opts.timeoutSeconds, &cfg.CallTimeoutSeconds},
		"rpm":            {opts.rpm, &cfg.RequestsPerMinute},
	}
	for name, f := range intFlags {
		if opts.set[name] {
			*f.field = f.value
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildClient returns the provider client wrapped with the per-call guard and
// then throttling, so time spent waiting for the limiter is not charged
// against the call timeout.
func buildClient(cfg *config.Config, dryRun bool, getenv func(string) string, askKey func(string) (string, error)) (llm.Client, error) {
	var base llm.Client
	if dryRun {
		base = newDryRunClient()
	} else {
		apiKey := cfg.ResolveAPIKey(getenv)
		if apiKey == "" && askKey != nil {
			key, err := askKey(fmt.Sprintf("%s API key (%s): ", cfg.Provider, llm.APIKeyEnvVar(cfg.Provider)))
			if err != nil {
				return nil, fmt.Errorf("failed to read API key: %w", err)
			}
			apiKey = key
		}

		client, err := llm.NewClient(llm.ClientOptions{
			Provider: cfg.Provider,
			APIKey:   apiKey,
			Model:    cfg.ResolvedModel(),
			BaseURL:  cfg.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
		}
		base = client
	}

	guarded := llm.NewGuardedClient(base, cfg.CallTimeout())
	logger.Debug("Generator %s: call timeout %v, %d requests/minute", guarded.GetModelName(), guarded.Timeout(), cfg.RequestsPerMinute)
	return llm.NewRateLimitedClient(guarded, cfg.RequestsPerMinute, rateLimitWindow), nil
}

func promptForAPIKey(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no API key configured and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	bytes, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytes)), nil
}

func reviewFile(ctx context.Context, runner *workflow.Runner, path, specialization string) (*workflow.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read code file: %w", err)
	}
	code := string(data)
	state, err := workflow.NewConversationState(code, specialization, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return runner.Run(ctx, state)
}

func progressPrinter(w io.Writer) progress.Callback {
	return func(update progress.Update) error {
		switch update.Kind {
		case progress.KindStatus, progress.KindDecision:
			_, err := io.WriteString(w, update.Message)
			return err
		default:
			logger.Debug("%s output (iteration %d): %d bytes", update.Step, update.Iteration, len(update.Message))
			return nil
		}
	}
}

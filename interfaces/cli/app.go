// Package cli provides the command-line interface for the lindos runtime.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lindoshq/lindos-go/application"
	"github.com/lindoshq/lindos-go/domain/responder"
	"github.com/lindoshq/lindos-go/infrastructure/config"
	"github.com/lindoshq/lindos-go/infrastructure/logging"
	"github.com/lindoshq/lindos-go/infrastructure/resilience"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
	debug      bool
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "lindos",
		Short: "Message validation and processing engine",
		Long: `lindos validates untrusted message input against a stable error taxonomy
and processes accepted messages into responses. Every result is owned until
explicitly released, so the engine can be embedded behind foreign-function
boundaries without leaking.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to configuration file")
	app.root.PersistentFlags().BoolVar(&app.debug, "debug", false, "Enable verbose boundary diagnostics")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newChatCmd(),
		app.newValidateCmd(),
		app.newErrcodeCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// loadConfig loads the configured file or falls back to defaults. The
// --debug flag overrides the file.
func (a *App) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.NewLoader().LoadFile(a.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}
	if a.debug {
		cfg.Logging.Debug = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// setup applies a configuration to the process and builds the engine.
func (a *App) setup(cfg *config.Config) *application.Engine {
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.SetDebug(cfg.Logging.Debug)

	execCfg := resilience.DefaultExecutorConfig()
	if cfg.Engine.MaxConcurrent > 0 {
		execCfg.MaxConcurrent = cfg.Engine.MaxConcurrent
	}
	if !cfg.Engine.RetryEnabled {
		execCfg.RetryMaxAttempts = 1
	} else if cfg.Engine.RetryAttempts > 0 {
		execCfg.RetryMaxAttempts = cfg.Engine.RetryAttempts
	}

	return application.NewEngine(application.EngineConfig{
		Responder: responder.NewEcho(
			responder.WithPrefix(cfg.Responder.Prefix),
			responder.WithMaxChars(cfg.Engine.MaxMessageChars),
		),
		Executor: resilience.NewExecutor(execCfg),
		MaxChars: cfg.Engine.MaxMessageChars,
	})
}

// watchConfig live-applies log level and debug changes while a long-running
// command is active. Returns a no-op closer when no file is configured.
func (a *App) watchConfig() func() {
	if a.configPath == "" {
		return func() {}
	}
	w, err := config.NewWatcher(a.configPath, nil, func(cfg *config.Config) {
		logging.SetLevel(cfg.Logging.Level)
		logging.SetDebug(cfg.Logging.Debug)
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "Warning: config watch unavailable: %v\n", err)
		return func() {}
	}
	return func() { _ = w.Close() }
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "lindos version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

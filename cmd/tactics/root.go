package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/phrazzld/tactics-srs/internal/config"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitFailure      = 1 // a command ran and failed
	exitCommandError = 2 // bad usage or configuration
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: exitCommandError, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

// rootOptions holds the global flags and the state they produce.
type rootOptions struct {
	configFile string
	envFile    string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tactics",
		Short:         "Spaced repetition for Lichess puzzles",
		Long:          "Sync Lichess puzzle attempts, schedule missed puzzles for review and serve the review queue.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, toml or json)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	cmd.AddCommand(
		newServeCommand(opts),
		newUpdateCommand(opts),
		newRecomputeCommand(opts),
		newLogCommand(opts),
		newTodayCommand(opts),
		newSyncCommand(opts),
		newReportCommand(opts),
		newMigrateCommand(opts),
	)

	return cmd
}

// load reads the dotenv file, the configuration and sets up logging. Log
// output goes to the command's error stream so that command output stays
// clean on stdout.
func (o *rootOptions) load(cmd *cobra.Command) error {
	if o.envFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return usageError(fmt.Errorf("failed to load %s: %w", o.envFile, err))
		}
	}

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return usageError(err)
	}

	l, err := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())
	if err != nil {
		return usageError(fmt.Errorf("failed to set up logger: %w", err))
	}

	for _, w := range cfg.Warnings {
		l.Warn("configuration value replaced by default", slog.String("detail", w))
	}
	l.Debug("configuration loaded",
		slog.String("db_driver", cfg.Database.Driver),
		slog.String("timezone", cfg.Location().String()),
		slog.Bool("lichess_token_present", cfg.Lichess.Token != ""))

	o.cfg = cfg
	o.logger = l
	return nil
}

// Package cli defines the command-line interface for klondikectl.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"klondike/internal/logging"
)

const (
	// defaultConfigPath is the default path to the game configuration file.
	defaultConfigPath = "game_config.json"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	LogLevel   logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: defaultConfigPath,
		LogLevel:   logging.LevelInfo,
	}

	var base baseEnv
	if err := parseEnv(&base); err == nil {
		if base.ConfigPath != "" {
			rootOpts.ConfigPath = base.ConfigPath
		}
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "klondikectl",
		Short: "klondikectl drives Klondike deals, advisors, and simulations",
		Long:  "klondikectl deals Klondike games, asks the advisor strategies for moves, runs seeded simulation batches, and inspects stored runs.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			levelValue := cmd.Flag("log-level").Value.String()
			if !cmd.Flags().Changed("log-level") && envPresent("KLONDIKE_LOG_LEVEL") {
				levelValue = os.Getenv("KLONDIKE_LOG_LEVEL")
			}
			level := logging.ParseLevel(levelValue)
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "Path to the game config JSON file")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newDealCommand(opts),
		newSimulateCommand(opts),
		newRunsCommand(opts),
		newDailyCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}

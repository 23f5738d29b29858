// Package cli implements the flowcollect command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"
	EnvFile string

	// Config and RunID are resolved before a subcommand runs.
	Config *Config
	RunID  string
	Logger *slog.Logger

	// Lookup reads the process environment; tests replace it.
	Lookup func(string) (string, bool)
}

// NewRootCommand creates the root command for the flowcollect CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Lookup: os.LookupEnv})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flowcollect",
		Short: "flowcollect - fold a stream into one value",
		Long: `Collect elements from arguments or a YAML/JSON sequence into a
single value, using a backpressure-aware stream.

Defaults for flags are read from FLOW_FORMAT, FLOW_SEPARATOR and
FLOW_VERBOSE, in the environment or in a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", DefaultEnvFile, "dotenv file with flag defaults")

	cmd.AddCommand(NewCollectCommand(opts))

	return cmd
}

// resolve applies environment defaults to flags the user did not set,
// validates them, and sets up the run's logger.
func (opts *RootOptions) resolve(cmd *cobra.Command) error {
	conf, err := LoadConfig(opts.EnvFile, opts.Lookup)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	opts.Config = conf

	flags := cmd.Flags()
	if !flags.Changed("format") && conf.Format != "" {
		opts.Format = conf.Format
	}
	if !flags.Changed("verbose") && conf.Verbose {
		opts.Verbose = true
	}

	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return WrapExitError(ExitCommandError, "creating run id", err)
	}
	opts.RunID = id.String()
	opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose).With("run", opts.RunID)

	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Silent  bool
	Format  string // "json" | "text"
	LogFile string
	Config  string

	// Logger is configured by the root command before any subcommand runs.
	Logger *slog.Logger

	logFile io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the anicache CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	cmd := &cobra.Command{
		Use:   "anicache",
		Short: "anicache - cached ANI and AF between genomes",
		Long: `Compute average nucleotide identity (ANI) and alignment fraction (AF)
between genome pairs with FastANI, reusing results stored in a SQLite cache.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setupLogging(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&opts.Silent, "silent", false, "log only errors on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also append log output to this file")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "configuration file (.yaml, .yml or .toml)")

	// Add subcommands
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// Execute runs the root command and returns its error, if any.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return execute(ctx, &RootOptions{}, args, stdout, stderr)
}

// execute runs the command tree and closes --log-file afterwards, whether or
// not the command succeeded. Cobra skips post-run hooks after a RunE error.
func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) (err error) {
	cmd := newRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	defer func() {
		if closeErr := opts.closeLog(); closeErr != nil {
			err = errors.Join(err, WrapExitError(ExitFailure, "failed to close log file", closeErr))
		}
	}()
	return cmd.ExecuteContext(ctx)
}

// setupLogging builds the logger shared by all commands. Log output goes to
// stderr, errors only with --silent, and additionally to --log-file when set.
func (o *RootOptions) setupLogging(stderr io.Writer) error {
	logLevel := slog.LevelInfo
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	stderrLevel := logLevel
	if o.Silent {
		stderrLevel = slog.LevelError
	}

	var handler slog.Handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: stderrLevel,
	})
	if o.LogFile != "" {
		f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		o.logFile = f
		handler = teeHandler{handler, slog.NewTextHandler(f, &slog.HandlerOptions{
			Level: logLevel,
		})}
	}
	o.Logger = slog.New(handler)
	slog.SetDefault(o.Logger)
	return nil
}

// logger returns the configured logger, or a discarding one when the
// command runs without the root command (tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o *RootOptions) closeLog() error {
	if o.logFile == nil {
		return nil
	}
	err := o.logFile.Close()
	o.logFile = nil
	return err
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

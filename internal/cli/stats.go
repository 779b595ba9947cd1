package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Database string
}

// CacheStats describes a cache file.
type CacheStats struct {
	Database  string `json:"database"`
	Rows      int64  `json:"rows"`
	SizeBytes int64  `json:"size_bytes"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Long: `Show the number of measurements stored in a cache and its size on disk.

Examples:
  anicache stats --db ./ani.db
  anicache stats --db ./ani.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emitError(opts.formatter(cmd), runStats(opts, cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite cache (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.RowCount(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to count rows", err)
	}

	stats := CacheStats{Database: opts.Database, Rows: rows}
	if fi, err := os.Stat(opts.Database); err == nil {
		stats.SizeBytes = fi.Size()
	}

	formatter := opts.formatter(cmd)
	if formatter.JSON() {
		return formatter.Success("", stats)
	}
	fmt.Fprintf(formatter.Writer, "Database: %s\n", stats.Database)
	fmt.Fprintf(formatter.Writer, "Rows:     %s\n", humanize.Comma(stats.Rows))
	fmt.Fprintf(formatter.Writer, "Size:     %s\n", humanize.Bytes(uint64(stats.SizeBytes)))
	return nil
}

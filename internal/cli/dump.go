package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"

	"github.com/roach88/anicache/internal/report"
	"github.com/roach88/anicache/internal/store"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Database  string
	Output    string
	Delimiter string
}

// DumpResult is printed after a successful dump.
type DumpResult struct {
	Database string `json:"database"`
	Output   string `json:"output"`
	Rows     int    `json:"rows"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the cache contents as CSV or TSV",
		Long: `Write every cached measurement, in insertion order, to a delimited file
with a header row. Output paths ending in .gz are gzip-compressed.

Examples:
  anicache dump --db ./ani.db --output ani.csv
  anicache dump --db ./ani.db --output ani.tsv.gz --delimiter tsv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emitError(opts.formatter(cmd), runDump(opts, cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite cache (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (required)")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", "csv", "output format (csv|tsv)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	delim, err := report.Delimiter(opts.Delimiter)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --delimiter", err)
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing cache", "error", closeErr)
		}
	}()

	var rows int
	err = report.WriteFile(opts.Output, func(w io.Writer) error {
		var err error
		rows, err = report.Dump(ctx, w, st, delim)
		return err
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to dump cache", err)
	}
	opts.logger().Info("cache dumped", "rows", humanize.Comma(int64(rows)), "output", opts.Output)

	result := DumpResult{Database: opts.Database, Output: opts.Output, Rows: rows}
	formatter := opts.formatter(cmd)
	if formatter.JSON() {
		return formatter.Success("", result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote %s row(s) to %s\n", humanize.Comma(int64(rows)), opts.Output)
	return nil
}

// openExisting opens an existing cache read-only, so dump and stats leave the
// file exactly as they found it.
func openExisting(path string) (*store.Store, error) {
	ok, err := pathutil.Exists(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to access database", err)
	}
	if !ok {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

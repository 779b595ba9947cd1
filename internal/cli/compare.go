package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/anicache/internal/aligner"
	"github.com/roach88/anicache/internal/ani"
	"github.com/roach88/anicache/internal/config"
	"github.com/roach88/anicache/internal/engine"
	"github.com/roach88/anicache/internal/genomes"
	"github.com/roach88/anicache/internal/report"
	"github.com/roach88/anicache/internal/store"
)

// Output file names written by compare.
const (
	PairsFile     = "ani_af.tsv"
	ANIMatrixFile = "ani_matrix.tsv"
	AFMatrixFile  = "af_matrix.tsv"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Query               string
	Ref                 string
	OutDir              string
	Database            string
	Aligner             string
	CPUs                int
	BatchSize           int
	FileExt             string
	RefToQuery          bool
	Precheck            bool
	ValidateGenomeFiles bool
	Combine             string
	NoProgress          bool

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// CompareSummary is the result printed after a successful compare.
type CompareSummary struct {
	RunID        string   `json:"-"` // carried by the response envelope
	Strategy     string   `json:"strategy"`
	Query        int      `json:"query_genomes"`
	Reference    int      `json:"reference_genomes"`
	Pairs        int      `json:"pairs"`
	Cached       int      `json:"cached"`
	Computed     int      `json:"computed"`
	Persisted    int      `json:"persisted"`
	AlignerCalls int64    `json:"aligner_calls"`
	Elapsed      string   `json:"elapsed"`
	Outputs      []string `json:"outputs"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	return newCompareCommand(&CompareOptions{RootOptions: rootOpts})
}

func newCompareCommand(opts *CompareOptions) *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compute ANI and AF between query and reference genomes",
		Long: `Compute ANI and AF between every query and reference genome.

Genomes are given as a directory (files ending in --file-ext) or as a file
listing one genome path per line. Pairs already in the cache are not
recomputed; new results are added to it.

Writes ani_af.tsv to the output directory. When the query and reference
inputs are the same, ani_matrix.tsv and af_matrix.tsv are written too.

Examples:
  anicache compare --query genomes/ --ref genomes/ --out-dir out --db ani.db
  anicache compare --query q.lst --ref refs/ --out-dir out --ref-to-query --combine symmetric
  anicache compare --query genomes/ --ref genomes/ --out-dir out --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emitError(opts.formatter(cmd), runCompare(opts, cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Query, "query", "", "query genomes: directory or list file (required)")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "reference genomes: directory or list file (required)")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "output directory (required)")
	cmd.Flags().StringVar(&opts.Database, "db", defaults.Database, "path to SQLite cache (no caching when empty)")
	cmd.Flags().StringVar(&opts.Aligner, "aligner", defaults.Aligner, "aligner executable")
	cmd.Flags().IntVar(&opts.CPUs, "cpus", defaults.CPUs, "number of concurrent aligner processes")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", defaults.BatchSize, "new results committed to the cache per transaction")
	cmd.Flags().StringVar(&opts.FileExt, "file-ext", defaults.FileExt, "extension of genome files in input directories")
	cmd.Flags().BoolVar(&opts.RefToQuery, "ref-to-query", false, "also compare each reference against each query")
	cmd.Flags().BoolVar(&opts.Precheck, "precheck", defaults.Precheck, "check whether all pairs are cached before starting workers")
	cmd.Flags().BoolVar(&opts.ValidateGenomeFiles, "validate-genome-files", false, "check that genome files named in list files exist")
	cmd.Flags().StringVar(&opts.Combine, "combine", "", fmt.Sprintf("also write both directions combined (%s)", strings.Join(ani.CombinerNames, "|")))
	cmd.Flags().BoolVar(&opts.NoProgress, "no-progress", false, "do not report progress")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("ref")
	_ = cmd.MarkFlagRequired("out-dir")

	return cmd
}

func runCompare(opts *CompareOptions, cmd *cobra.Command) error {
	log := opts.logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	var combine ani.Combiner
	if opts.Combine != "" {
		if combine, err = ani.ParseCombiner(opts.Combine); err != nil {
			return WrapExitError(ExitCommandError, "invalid --combine", err)
		}
	}

	if err := aligner.CheckDependencies(cfg.Aligner); err != nil {
		return WrapExitError(ExitCommandError, "aligner not available", err)
	}
	fa := aligner.NewFastANI(cfg.Aligner)
	log.Info("using aligner", "program", cfg.Aligner, "version", fa.Version(ctx))

	queryFiles, err := genomes.Discover(opts.Query, cfg.FileExt, opts.ValidateGenomeFiles)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read query genomes", err)
	}
	refFiles, err := genomes.Discover(opts.Ref, cfg.FileExt, opts.ValidateGenomeFiles)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read reference genomes", err)
	}
	log.Info("identified genomes",
		"query", humanize.Comma(int64(len(queryFiles))),
		"reference", humanize.Comma(int64(len(refFiles))),
	)

	pairs, paths, err := genomes.Plan(queryFiles, refFiles, opts.RefToQuery)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to plan comparisons", err)
	}
	log.Info("calculating ANI", "pairs", humanize.Comma(int64(len(pairs))))

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create output directory", err)
	}

	cache, err := store.OpenOrNull(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open cache", err)
	}
	defer func() {
		if closeErr := cache.Close(); closeErr != nil {
			log.Error("error closing cache", "error", closeErr)
		}
	}()
	if cfg.Database == "" {
		log.Warn("no cache configured, every pair will be computed")
	} else if rows, err := cache.RowCount(ctx); err == nil {
		log.Info("cache ready", "path", cfg.Database, "rows", humanize.Comma(rows))
	}

	engOpts := []engine.EngineOption{
		engine.WithWorkers(cfg.CPUs),
		engine.WithBatchSize(cfg.BatchSize),
		engine.WithSequentialThreshold(cfg.SequentialThreshold),
		engine.WithPrecheck(cfg.Precheck),
		engine.WithProgress(opts.progress(cmd.ErrOrStderr())),
		engine.WithLogger(log),
	}
	if opts.RunIDs != nil {
		engOpts = append(engOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	counted := aligner.NewCounting(fa)
	eng := engine.New(counted, cache, engOpts...)

	res, err := eng.Compute(ctx, pairs, paths)
	if err != nil {
		return WrapExitError(ExitFailure, "comparison failed", err)
	}

	outputs, err := writeCompareOutputs(opts, res.Table, combine)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to write results", err)
	}

	st := res.Stats
	return outputCompareSummary(opts.formatter(cmd), CompareSummary{
		RunID:        st.RunID,
		Strategy:     string(st.Strategy),
		Query:        len(queryFiles),
		Reference:    len(refFiles),
		Pairs:        st.Pairs,
		Cached:       st.Hits,
		Computed:     st.Misses,
		Persisted:    st.Persisted,
		AlignerCalls: counted.Calls(),
		Elapsed:      st.Elapsed.Round(time.Millisecond).String(),
		Outputs:      outputs,
	})
}

// resolveConfig layers explicitly set flags over the config file (or the
// built-in defaults when no file is given).
func resolveConfig(opts *CompareOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("aligner") {
		cfg.Aligner = opts.Aligner
	}
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}
	if flags.Changed("cpus") {
		cfg.CPUs = opts.CPUs
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = opts.BatchSize
	}
	if flags.Changed("file-ext") {
		cfg.FileExt = opts.FileExt
	}
	if flags.Changed("precheck") {
		cfg.Precheck = opts.Precheck
	}
	return cfg, cfg.Validate()
}

// progress picks a live bar for terminals and plain lines otherwise.
func (o *CompareOptions) progress(w io.Writer) engine.Progress {
	if o.NoProgress || o.Silent {
		return engine.NopProgress{}
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return engine.NewBarProgress(w)
	}
	return engine.NewLineProgress(w)
}

func writeCompareOutputs(opts *CompareOptions, table ani.Table, combine ani.Combiner) ([]string, error) {
	var outputs []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(opts.OutDir, name)
		if err := report.WriteFile(path, fn); err != nil {
			return err
		}
		outputs = append(outputs, path)
		return nil
	}

	if err := write(PairsFile, func(w io.Writer) error {
		return report.WritePairs(w, table)
	}); err != nil {
		return nil, err
	}

	// Every genome was compared against every other.
	if opts.Query == opts.Ref {
		if err := write(ANIMatrixFile, func(w io.Writer) error {
			return report.WriteMatrix(w, table, report.FieldANI)
		}); err != nil {
			return nil, err
		}
		if err := write(AFMatrixFile, func(w io.Writer) error {
			return report.WriteMatrix(w, table, report.FieldAF)
		}); err != nil {
			return nil, err
		}
	}

	if combine != nil {
		if err := write(CombinedFile(opts.Combine), func(w io.Writer) error {
			return report.WriteCombined(w, table, combine)
		}); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// CombinedFile names the output written for a combination rule.
func CombinedFile(rule string) string {
	return "ani_af_" + rule + ".tsv"
}

func outputCompareSummary(formatter *OutputFormatter, s CompareSummary) error {
	if formatter.JSON() {
		return formatter.Success(s.RunID, s)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compared %s genome pair(s) (%s query, %s reference)\n",
		humanize.Comma(int64(s.Pairs)), humanize.Comma(int64(s.Query)), humanize.Comma(int64(s.Reference)))
	fmt.Fprintf(formatter.Writer, "  cached:    %s\n", humanize.Comma(int64(s.Cached)))
	fmt.Fprintf(formatter.Writer, "  computed:  %s\n", humanize.Comma(int64(s.Computed)))
	fmt.Fprintf(formatter.Writer, "  persisted: %s\n", humanize.Comma(int64(s.Persisted)))
	fmt.Fprintf(formatter.Writer, "  strategy:  %s\n", s.Strategy)
	fmt.Fprintf(formatter.Writer, "  elapsed:   %s\n", s.Elapsed)
	fmt.Fprintf(formatter.Writer, "  run:       %s\n", s.RunID)
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintln(formatter.Writer, "Wrote:")
	for _, out := range s.Outputs {
		fmt.Fprintf(formatter.Writer, "  %s\n", out)
	}
	return nil
}

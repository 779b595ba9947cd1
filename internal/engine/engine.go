package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/roach88/anicache/internal/aligner"
	"github.com/roach88/anicache/internal/ani"
	"github.com/roach88/anicache/internal/store"
)

const (
	// DefaultBatchSize is the number of new measurements committed per transaction.
	DefaultBatchSize = 100

	// DefaultSequentialThreshold is the largest request computed without a worker pool.
	// Queue setup and worker start-up cost more than they save below this size.
	DefaultSequentialThreshold = 6
)

// Strategy names how a Compute call was carried out.
type Strategy string

const (
	StrategyPrecheck   Strategy = "precheck"
	StrategySequential Strategy = "sequential"
	StrategyPool       Strategy = "pool"
)

// Engine computes ANI for genome pairs, consulting the cache before the aligner.
//
// Thread-safety model:
//   - Compute(): one call at a time per Engine (the Progress reporter is
//     shared); each call builds its own table, batch writer and worker pool
//   - The Cache's InsertBatch is only ever called from the goroutine running
//     Compute
type Engine struct {
	aligner   aligner.Aligner
	cache     store.Cache
	logger    *slog.Logger
	progress  Progress
	runIDs    RunIDGenerator
	now       func() time.Time
	workers   int
	batchSize int
	threshold int
	precheck  bool
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithWorkers sets the worker pool size. Default: runtime.NumCPU().
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithBatchSize sets how many new measurements are committed per transaction.
// Default: 100 (DefaultBatchSize)
func WithBatchSize(n int) EngineOption {
	return func(e *Engine) {
		e.batchSize = n
	}
}

// WithSequentialThreshold sets the largest request computed without the pool.
// Default: 6 (DefaultSequentialThreshold)
func WithSequentialThreshold(n int) EngineOption {
	return func(e *Engine) {
		e.threshold = n
	}
}

// WithPrecheck enables the up-front full-cache check.
func WithPrecheck(enabled bool) EngineOption {
	return func(e *Engine) {
		e.precheck = enabled
	}
}

// WithProgress sets the progress reporter for the worker pool path.
func WithProgress(p Progress) EngineOption {
	return func(e *Engine) {
		e.progress = p
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRunIDGenerator overrides the run id source (for testing).
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// New creates an Engine. A nil cache behaves as store.Null.
func New(al aligner.Aligner, cache store.Cache, opts ...EngineOption) *Engine {
	if cache == nil {
		cache = store.Null{}
	}
	e := &Engine{
		aligner:   al,
		cache:     cache,
		logger:    slog.New(slog.DiscardHandler),
		progress:  NopProgress{},
		runIDs:    UUIDv7Generator{},
		now:       time.Now,
		workers:   runtime.NumCPU(),
		batchSize: DefaultBatchSize,
		threshold: DefaultSequentialThreshold,
	}

	// Apply options
	for _, opt := range opts {
		opt(e)
	}

	if e.workers < 1 {
		e.workers = 1
	}
	if e.batchSize < 1 {
		e.batchSize = 1
	}
	return e
}

// Stats summarizes one Compute call.
type Stats struct {
	RunID     string
	Strategy  Strategy
	Pairs     int // distinct pairs requested
	Hits      int // served from the cache
	Misses    int // computed by the aligner
	Persisted int // new measurements handed to the cache
	Elapsed   time.Duration
}

// Result is the outcome of a Compute call.
type Result struct {
	Table ani.Table
	Stats Stats
}

// outcome is one resolved pair flowing from a worker to the coordinator.
type outcome struct {
	key    ani.PairKey
	m      ani.Measurement
	cached bool
}

// Compute returns the measurement of every requested pair.
//
// Repeated pairs are computed once. Every pair must have a path in paths,
// otherwise ErrUnknownGenome is returned before any work starts (pairs
// satisfied by the precheck need no path).
//
// On error no table is returned. Batches committed before the failure remain
// in the cache.
func (e *Engine) Compute(ctx context.Context, pairs []ani.PairKey, paths map[ani.GenomeID]string) (Result, error) {
	start := e.now()
	pairs = ani.Dedup(pairs)
	stats := Stats{RunID: e.runIDs.Generate(), Pairs: len(pairs)}
	log := e.logger.With("run", stats.RunID)

	if e.precheck {
		table, ok, err := e.fullyCached(ctx, pairs)
		if err != nil {
			return Result{}, err
		}
		if ok {
			stats.Strategy = StrategyPrecheck
			stats.Hits = len(pairs)
			stats.Elapsed = e.now().Sub(start)
			log.Info("all pairs cached", "pairs", len(pairs))
			return Result{Table: table, Stats: stats}, nil
		}
	}

	for _, k := range pairs {
		for _, id := range []ani.GenomeID{k.Query, k.Ref} {
			if _, ok := paths[id]; !ok {
				return Result{}, unknownGenome(k, id)
			}
		}
	}

	var err error
	table := ani.NewTable()
	bw := newBatchWriter(e.cache, e.batchSize)
	merge := func(o outcome) error {
		table.Set(o.key, o.m)
		if o.cached {
			stats.Hits++
			return nil
		}
		stats.Misses++
		return bw.Add(ctx, ani.Entry{Key: o.key, Measurement: o.m})
	}

	if len(pairs) <= e.threshold {
		stats.Strategy = StrategySequential
		log.Debug("computing sequentially", "pairs", len(pairs))
		err = e.runSequential(ctx, pairs, paths, merge)
	} else {
		stats.Strategy = StrategyPool
		workers := min(e.workers, len(pairs))
		log.Debug("starting worker pool", "pairs", len(pairs), "workers", workers)
		err = e.runPool(ctx, pairs, paths, workers, merge)
	}
	if err == nil {
		err = bw.Flush(ctx)
	}
	stats.Persisted = bw.persisted
	if err != nil {
		log.Error("computation aborted",
			"error", err,
			"persisted", bw.persisted,
			"dropped", bw.Pending(),
		)
		return Result{}, err
	}

	stats.Elapsed = e.now().Sub(start)
	log.Info("computation finished",
		"pairs", stats.Pairs,
		"cached", stats.Hits,
		"computed", stats.Misses,
		"strategy", string(stats.Strategy),
		"elapsed", stats.Elapsed,
	)
	return Result{Table: table, Stats: stats}, nil
}

// fullyCached returns the cache-sourced table when every pair is cached.
// It stops at the first miss.
func (e *Engine) fullyCached(ctx context.Context, pairs []ani.PairKey) (ani.Table, bool, error) {
	table := ani.NewTable()
	for _, k := range pairs {
		m, ok, err := e.cache.Lookup(ctx, k)
		if err != nil {
			return nil, false, fmt.Errorf("precheck: %w", err)
		}
		if !ok {
			return nil, false, nil
		}
		table.Set(k, m)
	}
	return table, true, nil
}

// runSequential resolves pairs in input order in the calling goroutine.
func (e *Engine) runSequential(
	ctx context.Context,
	pairs []ani.PairKey,
	paths map[ani.GenomeID]string,
	merge func(outcome) error,
) error {
	for _, k := range pairs {
		o, err := e.resolve(ctx, e.cache, k, paths)
		if err != nil {
			return err
		}
		if err := merge(o); err != nil {
			return err
		}
	}
	return nil
}

// resolve returns the cached measurement for key, or runs the aligner on a miss.
func (e *Engine) resolve(
	ctx context.Context,
	r store.Reader,
	key ani.PairKey,
	paths map[ani.GenomeID]string,
) (outcome, error) {
	m, ok, err := r.Lookup(ctx, key)
	if err != nil {
		return outcome{}, err
	}
	if ok {
		return outcome{key: key, m: m, cached: true}, nil
	}

	m, err = e.aligner.Compare(ctx, key, paths[key.Query], paths[key.Ref])
	if err != nil {
		return outcome{}, err
	}
	return outcome{key: key, m: m}, nil
}

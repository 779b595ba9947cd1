package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/anicache/internal/ani"
)

// runPool resolves pairs with a fixed-size pool of workers.
//
// Every pair is queued up front and the job channel closed, so each worker
// sees the end of work exactly once. merge runs on a single collector
// goroutine; it is the only code that touches the table or writes the cache.
//
// The first error from any worker or from merge cancels gctx, which stops the
// remaining workers and kills their aligner processes.
func (e *Engine) runPool(
	ctx context.Context,
	pairs []ani.PairKey,
	paths map[ani.GenomeID]string,
	workers int,
	merge func(outcome) error,
) (err error) {
	jobs := make(chan ani.PairKey, len(pairs))
	for _, k := range pairs {
		jobs <- k
	}
	close(jobs)

	results := make(chan outcome, workers)
	g, gctx := errgroup.WithContext(ctx)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return e.work(gctx, jobs, results, paths)
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	e.progress.Start(len(pairs))
	defer func() { e.progress.Finish(err) }()

	start := e.now()
	g.Go(func() error {
		processed := 0
		for o := range results {
			if err := merge(o); err != nil {
				return err
			}
			processed++
			e.progress.Update(newStatus(processed, len(pairs), e.now().Sub(start)))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// A cancelled parent context stops workers without an error of their own.
	return ctx.Err()
}

// work is one worker's loop. It owns a private cache reader for its lifetime.
func (e *Engine) work(
	ctx context.Context,
	jobs <-chan ani.PairKey,
	results chan<- outcome,
	paths map[ani.GenomeID]string,
) (err error) {
	r, err := e.cache.NewReader()
	if err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("worker: close cache reader: %w", cerr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case k, ok := <-jobs:
			if !ok {
				return nil
			}
			o, err := e.resolve(ctx, r, k, paths)
			if err != nil {
				return err
			}
			select {
			case results <- o:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

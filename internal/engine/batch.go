package engine

import (
	"context"
	"fmt"

	"github.com/roach88/anicache/internal/ani"
	"github.com/roach88/anicache/internal/store"
)

// batchWriter buffers new measurements and commits them in fixed-size batches.
//
// A full batch is committed as soon as it fills, which bounds both memory and
// the work lost if the process dies: at most one partial batch.
//
// Not safe for concurrent use; only the coordinating goroutine owns it.
type batchWriter struct {
	cache     store.Cache
	size      int
	pending   []ani.Entry
	persisted int
}

func newBatchWriter(cache store.Cache, size int) *batchWriter {
	if size < 1 {
		size = 1
	}
	return &batchWriter{
		cache:   cache,
		size:    size,
		pending: make([]ani.Entry, 0, size),
	}
}

// Add queues an entry, committing the batch when it reaches the batch size.
func (b *batchWriter) Add(ctx context.Context, e ani.Entry) error {
	b.pending = append(b.pending, e)
	if len(b.pending) >= b.size {
		return b.Flush(ctx)
	}
	return nil
}

// Flush commits any pending entries.
func (b *batchWriter) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	if err := b.cache.InsertBatch(ctx, b.pending); err != nil {
		return fmt.Errorf("persist %d measurements: %w", len(b.pending), err)
	}
	b.persisted += len(b.pending)
	b.pending = b.pending[:0]
	return nil
}

// Pending returns the number of entries not yet committed.
func (b *batchWriter) Pending() int {
	return len(b.pending)
}

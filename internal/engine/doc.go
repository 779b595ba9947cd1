// Package engine implements the cache-aware ANI computation engine.
//
// ARCHITECTURE:
//
// Dispatch:
// Compute deduplicates the requested pairs, optionally prechecks the cache,
// then picks a strategy by size. Small requests (at most the sequential
// threshold, default 6) run in the calling goroutine; larger ones go to a
// worker pool. Both strategies produce identical tables.
//
// Worker Pool:
//  1. All pairs are queued on a buffered job channel, which is then closed
//  2. N workers each open a private cache Reader and drain the job channel
//  3. Hit: the cached measurement is emitted; miss: the aligner runs
//  4. The coordinator merges results into the table and batches misses
//  5. A WaitGroup closes the result channel once every worker returns
//
// Only the coordinator writes to the cache. Completion order across workers
// is non-deterministic; each pair is processed exactly once.
//
// Failure:
// The first error cancels the shared context, which stops every worker and
// kills in-flight aligner processes. Batches committed before the failure
// stay in the cache; the pending partial batch is dropped.
package engine

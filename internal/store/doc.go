// Package store provides SQLite-backed durable storage for ANI measurements.
//
// The store is an append-only set of PairKey -> Measurement facts held in a
// single table:
//
//	ani_table(query_id TEXT, ref_id TEXT, ani REAL, af REAL)
//	gid_idx ON ani_table(query_id, ref_id)
//
// Rows are never updated or deleted. The layout matches caches written by
// earlier releases of the tool, so existing cache files open unchanged.
//
// # Concurrency
//
// Each concurrent worker owns a Reader obtained from Cache.NewReader, which
// opens its own handle on the same file. Only the coordinating goroutine
// calls InsertBatch; workers never write.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Reader handles set query_only=ON
//
// Build with -tags purego to use the cgo-free modernc.org/sqlite driver.
package store

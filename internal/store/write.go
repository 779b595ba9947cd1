package store

import (
	"context"
	"fmt"

	"github.com/roach88/anicache/internal/ani"
)

// InsertBatch appends entries to the cache in a single transaction.
// An empty batch is a no-op. Either every entry is committed or none is.
//
// The cache is append-only: callers must only insert pairs that missed, so
// each PairKey is written at most once.
func (s *Store) InsertBatch(ctx context.Context, entries []ani.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ani_table (query_id, ref_id, ani, af)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert batch: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, string(e.Key.Query), string(e.Key.Ref), e.ANI, e.AF); err != nil {
			return fmt.Errorf("insert batch: %s: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert batch: commit: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/anicache/internal/ani"
)

const lookupSQL = `SELECT ani, af FROM ani_table WHERE query_id = ? AND ref_id = ?`

func lookup(ctx context.Context, db *sql.DB, key ani.PairKey) (ani.Measurement, bool, error) {
	var m ani.Measurement
	err := db.QueryRowContext(ctx, lookupSQL, string(key.Query), string(key.Ref)).Scan(&m.ANI, &m.AF)
	if errors.Is(err, sql.ErrNoRows) {
		return ani.Measurement{}, false, nil
	}
	if err != nil {
		return ani.Measurement{}, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	return m, true, nil
}

// Lookup returns the cached measurement for key.
func (s *Store) Lookup(ctx context.Context, key ani.PairKey) (ani.Measurement, bool, error) {
	return lookup(ctx, s.db, key)
}

// RowCount returns the number of rows in the cache.
//
// Rows are never deleted, so the largest rowid equals the row count.
func (s *Store) RowCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(rowid), 0) FROM ani_table`).Scan(&n); err != nil {
		return 0, fmt.Errorf("row count: %w", err)
	}
	return n, nil
}

// Each calls fn for every cached row in insertion order.
// Iteration stops at the first error returned by fn.
func (s *Store) Each(ctx context.Context, fn func(ani.Entry) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT query_id, ref_id, ani, af FROM ani_table ORDER BY rowid ASC`)
	if err != nil {
		return fmt.Errorf("scan cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e     ani.Entry
			qid   string
			refID string
		)
		if err := rows.Scan(&qid, &refID, &e.ANI, &e.AF); err != nil {
			return fmt.Errorf("scan cache: %w", err)
		}
		e.Key = ani.Pair(ani.GenomeID(qid), ani.GenomeID(refID))
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan cache: %w", err)
	}
	return nil
}

// reader is a worker-owned, query-only handle.
type reader struct {
	db *sql.DB
}

func (r *reader) Lookup(ctx context.Context, key ani.PairKey) (ani.Measurement, bool, error) {
	return lookup(ctx, r.db, key)
}

func (r *reader) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

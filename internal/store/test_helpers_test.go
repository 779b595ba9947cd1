package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/anicache/internal/ani"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ani_cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// entry builds a cache entry for tests.
func entry(q, r string, aniV, af float64) ani.Entry {
	return ani.Entry{
		Key:         ani.Pair(ani.GenomeID(q), ani.GenomeID(r)),
		Measurement: ani.Measurement{ANI: aniV, AF: af},
	}
}

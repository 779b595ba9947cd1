package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/anicache/internal/ani"
	"github.com/roach88/anicache/internal/store"
)

// measurementFor derives a stable, pair-specific measurement.
func measurementFor(k ani.PairKey) ani.Measurement {
	h := fnv.New32a()
	h.Write([]byte(string(k.Query) + "|" + string(k.Ref)))
	v := h.Sum32()
	return ani.Measurement{ANI: 80 + float64(v%2000)/100, AF: float64(v%1000) / 1000}
}

// fakeAligner returns measurementFor(key) and records every call.
type fakeAligner struct {
	mu    sync.Mutex
	calls map[ani.PairKey]int
	fail  map[ani.PairKey]error
	block bool // wait for ctx cancellation instead of returning
	seen  chan ani.PairKey
}

func newFakeAligner() *fakeAligner {
	return &fakeAligner{calls: make(map[ani.PairKey]int), fail: make(map[ani.PairKey]error)}
}

func (f *fakeAligner) Compare(ctx context.Context, key ani.PairKey, queryPath, refPath string) (ani.Measurement, error) {
	f.mu.Lock()
	f.calls[key]++
	err := f.fail[key]
	f.mu.Unlock()

	if f.seen != nil {
		select {
		case f.seen <- key:
		default:
		}
	}
	if f.block {
		<-ctx.Done()
		return ani.Measurement{}, ctx.Err()
	}
	if err != nil {
		return ani.Measurement{}, err
	}
	if queryPath != "/genomes/"+string(key.Query)+".fna" || refPath != "/genomes/"+string(key.Ref)+".fna" {
		return ani.Measurement{}, fmt.Errorf("wrong paths for %s: %s %s", key, queryPath, refPath)
	}
	return measurementFor(key), nil
}

func (f *fakeAligner) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// memCache is an in-memory store.Cache that records batches and readers.
type memCache struct {
	mu        sync.Mutex
	rows      map[ani.PairKey]ani.Measurement
	batches   [][]ani.Entry
	readers   int
	readerErr error
	insertErr error
}

func newMemCache() *memCache {
	return &memCache{rows: make(map[ani.PairKey]ani.Measurement)}
}

func (c *memCache) Lookup(_ context.Context, key ani.PairKey) (ani.Measurement, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.rows[key]
	return m, ok, nil
}

func (c *memCache) InsertBatch(_ context.Context, entries []ani.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.insertErr != nil {
		return c.insertErr
	}
	batch := make([]ani.Entry, len(entries))
	copy(batch, entries)
	c.batches = append(c.batches, batch)
	for _, e := range entries {
		if _, dup := c.rows[e.Key]; dup {
			return fmt.Errorf("duplicate insert of %s", e.Key)
		}
		c.rows[e.Key] = e.Measurement
	}
	return nil
}

func (c *memCache) RowCount(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.rows)), nil
}

func (c *memCache) NewReader() (store.Reader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readerErr != nil {
		return nil, c.readerErr
	}
	c.readers++
	return c, nil
}

func (c *memCache) Path() string { return "memory" }

func (c *memCache) Close() error { return nil }

func (c *memCache) batchSizes() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	sizes := make([]int, len(c.batches))
	for i, b := range c.batches {
		sizes[i] = len(b)
	}
	return sizes
}

// genomeSet returns ids g01..gNN with their fake paths.
func genomeSet(n int) ([]ani.GenomeID, map[ani.GenomeID]string) {
	ids := make([]ani.GenomeID, n)
	paths := make(map[ani.GenomeID]string, n)
	for i := range ids {
		ids[i] = ani.GenomeID(fmt.Sprintf("g%02d", i+1))
		paths[ids[i]] = "/genomes/" + string(ids[i]) + ".fna"
	}
	return ids, paths
}

// firstPairs returns the first n ordered pairs (a != b) over ids.
func firstPairs(ids []ani.GenomeID, n int) []ani.PairKey {
	var pairs []ani.PairKey
	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			if len(pairs) == n {
				return pairs
			}
			pairs = append(pairs, ani.Pair(a, b))
		}
	}
	return pairs
}

// expectedTable is what any correct Compute must return for pairs.
func expectedTable(pairs []ani.PairKey) ani.Table {
	t := ani.NewTable()
	for _, k := range pairs {
		t.Set(k, measurementFor(k))
	}
	return t
}

// openSQLite opens a fresh on-disk cache.
func openSQLite(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ani_cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

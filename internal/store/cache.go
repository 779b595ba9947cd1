package store

import (
	"context"
	"errors"

	"github.com/roach88/anicache/internal/ani"
)

// Reader looks up cached measurements.
type Reader interface {
	// Lookup returns the measurement for key. ok is false when the pair has
	// never been computed, which is distinct from a stored zero measurement.
	Lookup(ctx context.Context, key ani.PairKey) (m ani.Measurement, ok bool, err error)

	// Close releases the handle.
	Close() error
}

// Cache is a durable PairKey -> Measurement store.
type Cache interface {
	Reader

	// InsertBatch appends entries in one transaction.
	InsertBatch(ctx context.Context, entries []ani.Entry) error

	// RowCount returns the number of stored measurements.
	RowCount(ctx context.Context) (int64, error)

	// NewReader opens an independent read handle for a concurrent worker.
	NewReader() (Reader, error)

	// Path returns the backing file, or "" for a cache with no storage.
	Path() string
}

// UnavailableError reports that the cache file could not be opened or created.
type UnavailableError struct {
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return "cache unavailable at " + e.Path + ": " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable returns true if err is or wraps an *UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Null is a Cache that stores nothing. Lookups always miss and inserts are
// discarded, so callers behave identically with or without a cache file.
type Null struct{}

var _ Cache = Null{}

func (Null) Lookup(context.Context, ani.PairKey) (ani.Measurement, bool, error) {
	return ani.Measurement{}, false, nil
}

func (Null) InsertBatch(context.Context, []ani.Entry) error { return nil }

func (Null) RowCount(context.Context) (int64, error) { return 0, nil }

func (n Null) NewReader() (Reader, error) { return n, nil }

func (Null) Path() string { return "" }

func (Null) Close() error { return nil }

// OpenOrNull opens the SQLite cache at path, or returns Null when path is empty.
func OpenOrNull(path string) (Cache, error) {
	if path == "" {
		return Null{}, nil
	}
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

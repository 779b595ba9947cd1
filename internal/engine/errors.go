package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/anicache/internal/ani"
)

// ErrUnknownGenome indicates a requested pair references a genome with no file path.
var ErrUnknownGenome = errors.New("unknown genome")

func unknownGenome(key ani.PairKey, id ani.GenomeID) error {
	return fmt.Errorf("pair %s: %w %q", key, ErrUnknownGenome, id)
}

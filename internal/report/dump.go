package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/roach88/anicache/internal/ani"
)

// RowSource iterates every cached measurement. Implemented by *store.Store.
type RowSource interface {
	Each(ctx context.Context, fn func(ani.Entry) error) error
}

// DumpHeader is the column header written by Dump.
var DumpHeader = []string{"query_id", "ref_id", "ani", "af"}

// Delimiter resolves a dump format name ("csv" or "tsv") to its field separator.
func Delimiter(format string) (rune, error) {
	switch format {
	case "csv", "CSV":
		return ',', nil
	case "tsv", "TSV":
		return '\t', nil
	default:
		return 0, fmt.Errorf("invalid dump format %q: must be csv or tsv", format)
	}
}

// Dump writes every cache row, in insertion order, as delimited text.
// Returns the number of rows written.
func Dump(ctx context.Context, w io.Writer, src RowSource, delim rune) (int, error) {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(DumpHeader); err != nil {
		return 0, fmt.Errorf("dump: %w", err)
	}

	n := 0
	err := src.Each(ctx, func(e ani.Entry) error {
		n++
		return cw.Write([]string{
			string(e.Key.Query),
			string(e.Key.Ref),
			strconv.FormatFloat(e.ANI, 'g', -1, 64),
			strconv.FormatFloat(e.AF, 'g', -1, 64),
		})
	})
	if err != nil {
		return n, fmt.Errorf("dump: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("dump: %w", err)
	}
	return n, nil
}

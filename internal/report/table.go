package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/anicache/internal/ani"
)

// Field selects which value of a Measurement a matrix shows.
type Field int

const (
	FieldANI Field = iota
	FieldAF
)

func (f Field) of(m ani.Measurement) float64 {
	if f == FieldAF {
		return m.AF
	}
	return m.ANI
}

// WritePairs writes one row per directional measurement:
//
//	Query	Reference	ANI	AF
func WritePairs(w io.Writer, t ani.Table) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Query\tReference\tANI\tAF")
	for _, k := range t.Pairs() {
		m, _ := t.Get(k)
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n", k.Query, k.Ref, ani.FormatFloat(m.ANI), ani.FormatFloat(m.AF))
	}
	return bw.Flush()
}

// WriteMatrix writes a square matrix of field over the table's query ids.
//
// Only meaningful when every genome was compared against every other
// (self-comparison mode). Missing cells are written as 0.
func WriteMatrix(w io.Writer, t ani.Table, field Field) error {
	ids := t.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\t%s\n", strings.Join(names, "\t"))
	for _, a := range ids {
		bw.WriteString(string(a))
		for _, b := range ids {
			m, _ := t.Get(ani.Pair(a, b))
			bw.WriteByte('\t')
			bw.WriteString(ani.FormatFloat(field.of(m)))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteCombined writes one row per unordered genome pair whose two directions
// are both present, reduced with combine:
//
//	GenomeA	GenomeB	ANI	AF
//
// GenomeA sorts before GenomeB.
func WriteCombined(w io.Writer, t ani.Table, combine ani.Combiner) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "GenomeA\tGenomeB\tANI\tAF")
	for _, k := range t.Pairs() {
		if k.Query >= k.Ref || !t.Has(k.Reverse()) {
			continue
		}
		aniV, af := combine(t, k.Query, k.Ref)
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n", k.Query, k.Ref, ani.FormatFloat(aniV), ani.FormatFloat(af))
	}
	return bw.Flush()
}

package report

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anicache/internal/ani"
)

func newGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// sampleTable has both directions for a/b and a/c, and only c->b for b/c.
func sampleTable() ani.Table {
	t := ani.NewTable()
	t.Set(ani.Pair("a", "b"), ani.Measurement{ANI: 97.5, AF: 0.75})
	t.Set(ani.Pair("b", "a"), ani.Measurement{ANI: 98.25, AF: 0.875})
	t.Set(ani.Pair("c", "a"), ani.Measurement{ANI: 80.5, AF: 0.5})
	t.Set(ani.Pair("a", "c"), ani.Measurement{ANI: 80.125, AF: 0.25})
	t.Set(ani.Pair("c", "b"), ani.Measurement{})
	return t
}

func TestWritePairs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePairs(&buf, sampleTable()))
	newGolden(t).Assert(t, "pairs", buf.Bytes())
}

func TestWritePairs_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePairs(&buf, ani.NewTable()))
	assert.Equal(t, "Query\tReference\tANI\tAF\n", buf.String())
}

func TestWriteMatrix(t *testing.T) {
	tests := []struct {
		name  string
		field Field
	}{
		{"ani_matrix", FieldANI},
		{"af_matrix", FieldAF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteMatrix(&buf, sampleTable(), tt.field))
			newGolden(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestWriteMatrix_AFCarriesAF(t *testing.T) {
	tbl := ani.NewTable()
	tbl.Set(ani.Pair("x", "y"), ani.Measurement{ANI: 99, AF: 0.5})
	tbl.Set(ani.Pair("y", "x"), ani.Measurement{ANI: 99, AF: 0.25})

	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, tbl, FieldAF))
	assert.Equal(t, "\tx\ty\nx\t0\t0.5\ny\t0.25\t0\n", buf.String())
}

func TestWriteCombined(t *testing.T) {
	tests := []struct {
		name    string
		combine ani.Combiner
	}{
		{"combined_symmetric", ani.Symmetric},
		{"combined_mean", ani.Mean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCombined(&buf, sampleTable(), tt.combine))
			newGolden(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestWriteCombined_SkipsOneDirectionPairs(t *testing.T) {
	tbl := ani.NewTable()
	tbl.Set(ani.Pair("b", "a"), ani.Measurement{ANI: 90, AF: 0.5})

	var buf bytes.Buffer
	require.NoError(t, WriteCombined(&buf, tbl, ani.Symmetric))
	assert.Equal(t, "GenomeA\tGenomeB\tANI\tAF\n", buf.String())
}

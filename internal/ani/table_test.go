package ani

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_SetGet(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Get(Pair("A", "B"))
	assert.False(t, ok)

	tbl.Set(Pair("A", "B"), Measurement{})
	m, ok := tbl.Get(Pair("A", "B"))
	assert.True(t, ok, "stored zero measurement must be present")
	assert.True(t, m.IsZero())
	assert.False(t, tbl.Has(Pair("B", "A")))
}

func TestTable_OneMeasurementPerKey(t *testing.T) {
	tbl := NewTable()
	tbl.Set(Pair("A", "B"), Measurement{ANI: 80})
	tbl.Set(Pair("A", "B"), Measurement{ANI: 81})
	tbl.Set(Pair("A", "C"), Measurement{ANI: 82})

	assert.Equal(t, 2, tbl.Len())
	m, _ := tbl.Get(Pair("A", "B"))
	assert.Equal(t, 81.0, m.ANI)
}

func TestTable_PairsAndIDsSorted(t *testing.T) {
	tbl := NewTable()
	tbl.Set(Pair("c", "a"), Measurement{})
	tbl.Set(Pair("a", "c"), Measurement{})
	tbl.Set(Pair("a", "b"), Measurement{})

	assert.Equal(t, []PairKey{Pair("a", "b"), Pair("a", "c"), Pair("c", "a")}, tbl.Pairs())
	assert.Equal(t, []GenomeID{"a", "c"}, tbl.IDs())
}

func TestDedup_KeepsFirstSeenOrder(t *testing.T) {
	in := []PairKey{Pair("A", "B"), Pair("B", "A"), Pair("A", "B"), Pair("C", "A")}
	assert.Equal(t, []PairKey{Pair("A", "B"), Pair("B", "A"), Pair("C", "A")}, Dedup(in))
}

func TestPairKey_Reverse(t *testing.T) {
	k := Pair("Q", "R")
	assert.Equal(t, Pair("R", "Q"), k.Reverse())
	assert.Equal(t, "Q -> R", k.String())
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "99.5", FormatFloat(99.5))
	assert.Equal(t, "0", FormatFloat(0))
	assert.Equal(t, "0.925", FormatFloat(0.925))
}

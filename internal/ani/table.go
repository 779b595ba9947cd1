package ani

import "sort"

// Table maps query id to reference id to Measurement.
//
// The zero value is not usable; create tables with NewTable.
type Table map[GenomeID]map[GenomeID]Measurement

// NewTable creates an empty result table.
func NewTable() Table {
	return make(Table)
}

// Set records the measurement for key, replacing any previous value.
func (t Table) Set(key PairKey, m Measurement) {
	row, ok := t[key.Query]
	if !ok {
		row = make(map[GenomeID]Measurement)
		t[key.Query] = row
	}
	row[key.Ref] = m
}

// Get returns the measurement for key and whether it is present.
func (t Table) Get(key PairKey) (Measurement, bool) {
	row, ok := t[key.Query]
	if !ok {
		return Measurement{}, false
	}
	m, ok := row[key.Ref]
	return m, ok
}

// Has reports whether key is present.
func (t Table) Has(key PairKey) bool {
	_, ok := t.Get(key)
	return ok
}

// Len returns the number of measurements in the table.
func (t Table) Len() int {
	n := 0
	for _, row := range t {
		n += len(row)
	}
	return n
}

// Pairs returns every key in the table, sorted by query then reference.
func (t Table) Pairs() []PairKey {
	keys := make([]PairKey, 0, t.Len())
	for q, row := range t {
		for r := range row {
			keys = append(keys, PairKey{Query: q, Ref: r})
		}
	}
	SortPairs(keys)
	return keys
}

// IDs returns the sorted query ids of the table.
func (t Table) IDs() []GenomeID {
	ids := make([]GenomeID, 0, len(t))
	for q := range t {
		ids = append(ids, q)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

package ani

import (
	"sort"
	"strconv"
)

// GenomeID identifies a genome within a comparison set.
type GenomeID string

// PairKey is an ordered (query, reference) pair.
type PairKey struct {
	Query GenomeID `json:"query_id"`
	Ref   GenomeID `json:"ref_id"`
}

// Pair is shorthand for constructing a PairKey.
func Pair(query, ref GenomeID) PairKey {
	return PairKey{Query: query, Ref: ref}
}

// Reverse returns the key for the opposite direction.
func (k PairKey) Reverse() PairKey {
	return PairKey{Query: k.Ref, Ref: k.Query}
}

func (k PairKey) String() string {
	return string(k.Query) + " -> " + string(k.Ref)
}

// Measurement is the result of aligning a query genome against a reference.
type Measurement struct {
	ANI float64 `json:"ani"` // percent identity, typically [0,100]
	AF  float64 `json:"af"`  // aligned fraction, typically [0,1]
}

// IsZero reports whether m is the below-threshold sentinel.
func (m Measurement) IsZero() bool {
	return m.ANI == 0 && m.AF == 0
}

// Entry is one persisted cache row.
type Entry struct {
	Key PairKey
	Measurement
}

// FormatFloat renders v as the shortest decimal that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SortPairs orders keys by query then reference.
func SortPairs(keys []PairKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Query != keys[j].Query {
			return keys[i].Query < keys[j].Query
		}
		return keys[i].Ref < keys[j].Ref
	})
}

// Dedup returns keys with repeated pairs removed, keeping first-seen order.
func Dedup(keys []PairKey) []PairKey {
	seen := make(map[PairKey]struct{}, len(keys))
	out := make([]PairKey, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

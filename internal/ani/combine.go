package ani

import "fmt"

// Combiner reduces the two directions of a genome pair to one value.
type Combiner func(t Table, a, b GenomeID) (ani, af float64)

// Symmetric returns the larger ANI and the larger AF of the two directions.
//
// The maximum is the most conservative circumscription: it avoids splitting a
// species because one assembly is incomplete or contaminated. Returns (0, 0)
// unless both a->b and b->a are present.
func Symmetric(t Table, a, b GenomeID) (ani, af float64) {
	fwd, rev, ok := bothDirections(t, a, b)
	if !ok {
		return 0, 0
	}
	return max(fwd.ANI, rev.ANI), max(fwd.AF, rev.AF)
}

// Mean returns the arithmetic mean of the two directions.
// Returns (0, 0) unless both a->b and b->a are present.
func Mean(t Table, a, b GenomeID) (ani, af float64) {
	fwd, rev, ok := bothDirections(t, a, b)
	if !ok {
		return 0, 0
	}
	return (fwd.ANI + rev.ANI) / 2, (fwd.AF + rev.AF) / 2
}

func bothDirections(t Table, a, b GenomeID) (fwd, rev Measurement, ok bool) {
	fwd, ok = t.Get(Pair(a, b))
	if !ok {
		return Measurement{}, Measurement{}, false
	}
	rev, ok = t.Get(Pair(b, a))
	if !ok {
		return Measurement{}, Measurement{}, false
	}
	return fwd, rev, true
}

// CombinerNames lists the names accepted by ParseCombiner.
var CombinerNames = []string{"symmetric", "mean"}

// ParseCombiner resolves a combination rule by name.
func ParseCombiner(name string) (Combiner, error) {
	switch name {
	case "symmetric":
		return Symmetric, nil
	case "mean":
		return Mean, nil
	default:
		return nil, fmt.Errorf("unknown combination rule %q: must be one of %v", name, CombinerNames)
	}
}

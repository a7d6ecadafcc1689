// Package overlap classifies how a merged-in interval relates to the span
// accumulated so far. The same classification applies to address ranges and
// to L4 port ranges, so both merge engines share it.
package overlap

// Relation describes the position of the next interval relative to the
// accumulated span it is being merged into.
type Relation int

const (
	// Adjoins: the next interval starts exactly one past the accumulated end.
	Adjoins Relation = iota
	// Shadows: the next interval is fully contained in the accumulated span.
	Shadows
	// PartiallyOverlaps: the next interval overlaps and extends the span.
	PartiallyOverlaps
)

func (r Relation) String() string {
	switch r {
	case Adjoins:
		return "ADJOINS"
	case Shadows:
		return "SHADOWS"
	default:
		return "PARTIALLY OVERLAPS"
	}
}

// Classify relates [nextStart, nextEnd] to an accumulated span ending at
// currEnd. Callers only invoke it once the overlap-or-adjacency test
// nextStart <= currEnd+1 has already passed.
func Classify(currEnd, nextStart, nextEnd uint64) Relation {
	switch {
	case currEnd+1 == nextStart:
		return Adjoins
	case nextEnd <= currEnd:
		return Shadows
	default:
		return PartiallyOverlaps
	}
}

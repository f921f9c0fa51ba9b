package domain

// Algorithm determines some or all medal boundaries from the cumulative
// statistics of contestants at or above each score, possibly given some
// boundaries that have already been determined.
// Implementations are immutable once configured and safe for concurrent use.
type Algorithm interface {
	// ComputeBoundaries returns a boundary vector of the same length as
	// goal in which the positions the algorithm is responsible for are
	// resolved. Positions outside its responsibility are copied from
	// known unchanged, except that the last position is always the
	// contestant total.
	//
	// An algorithm expects a fixed set of boundaries to be known already
	// (for example, a gold/silver algorithm expects the total number of
	// medals) and does not need to be flexible about what information is
	// provided.
	//
	// Example:
	//
	//	stats := CumulativeStats{10, 10, 9, 7, 4, 2, 0}
	//	goal := Goal{1, 2, 3, 6}
	//	bounds, err := alg.ComputeBoundaries(stats, goal, NewBoundaries(goal, stats.Total()))
	ComputeBoundaries(stats CumulativeStats, goal Goal, known Boundaries) (Boundaries, error)

	// Name returns a short identifier used in errors and logs.
	Name() string
}

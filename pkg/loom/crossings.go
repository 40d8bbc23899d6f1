package loom

// CrossingWorkspace holds a reusable Fenwick (binary indexed) tree so
// repeated inversion counts during a local-search or branch-and-bound
// sweep don't each allocate their own buffer. It counts inversions
// between two line-bundle orderings.
type CrossingWorkspace struct {
	ft []int
}

// NewCrossingWorkspace returns a workspace pre-sized for sequences of up
// to capacity elements. It grows automatically if a larger sequence is
// passed to CountInversions.
func NewCrossingWorkspace(capacity int) *CrossingWorkspace {
	return &CrossingWorkspace{ft: make([]int, capacity+2)}
}

func (ws *CrossingWorkspace) ensure(n int) {
	if len(ws.ft) < n+2 {
		ws.ft = make([]int, n+2)
	}
}

// CountInversions returns the number of pairs (i, j), i < j, with
// seq[i] > seq[j], where seq holds a permutation-like sequence of ranks
// in [0, len(seq)). Two lines that keep ascending rank in both of an
// edge pair's bundles contribute no inversions; a pair that swaps side
// contributes exactly one, which is how this function doubles as a
// same-segment crossing count.
func (ws *CrossingWorkspace) CountInversions(seq []int) int {
	n := len(seq)
	ws.ensure(n)
	for i := range ws.ft[:n+1] {
		ws.ft[i] = 0
	}

	crossings, seen := 0, 0
	for _, v := range seq {
		leq := 0
		for q := v + 1; q > 0; q -= q & (-q) {
			leq += ws.ft[q]
		}
		crossings += seen - leq
		seen++
		for i := v + 1; i < len(ws.ft); i += i & (-i) {
			ws.ft[i]++
		}
	}
	return crossings
}

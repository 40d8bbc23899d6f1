package topo

import (
	"slices"

	"github.com/transitdraw/transitmap/pkg/graph"
)

const overlapSamples = 16

// candidate describes a pair of edges whose geometries run close enough,
// over enough of their length, to be aggregation or split candidates
// (§4.B operation 1).
type candidate struct {
	a, b   graph.EdgeID
	frac   float64  // fraction of samples within MaxAggrDist
	window [2]int   // first/last sample index where the two curves are close
}

// findCandidates scans every pair of edges in deterministic (sorted ID)
// order and returns those whose shared-length fraction is positive,
// ordered by descending fraction so the greedy merge pass resolves the
// strongest matches first (§4.B failure semantics: deterministic greedy
// pairwise order on ambiguity).
func findCandidates(g *graph.LineGraph, opts Options) []candidate {
	ids := g.SortedEdgeIDs()
	var out []candidate
	for i := 0; i < len(ids); i++ {
		ea, _ := g.Edge(ids[i])
		for j := i + 1; j < len(ids); j++ {
			eb, _ := g.Edge(ids[j])
			frac, window := overlapWindow(ea, eb, opts.MaxAggrDist)
			if frac <= 0 {
				continue
			}
			out = append(out, candidate{a: ids[i], b: ids[j], frac: frac, window: window})
		}
	}
	slices.SortStableFunc(out, func(x, y candidate) int {
		switch {
		case x.frac > y.frac:
			return -1
		case x.frac < y.frac:
			return 1
		case x.a != y.a:
			return int(x.a) - int(y.a)
		default:
			return int(x.b) - int(y.b)
		}
	})
	return out
}

// shareLineID reports whether two edges have at least one line in common,
// or both carry no lines at all.
func shareLineID(a, b *graph.Edge) bool {
	seen := make(map[graph.LineID]struct{}, len(a.Bundle))
	for _, occ := range a.Bundle {
		seen[occ.Line.ID] = struct{}{}
	}
	for _, occ := range b.Bundle {
		if _, ok := seen[occ.Line.ID]; ok {
			return true
		}
	}
	return len(a.Bundle) == 0 && len(b.Bundle) == 0
}

// overlapWindow samples both geometries at equal arc-length fractions and
// returns the fraction of samples within tol of each other, plus the
// contiguous sample-index window over which that holds (the longest run).
func overlapWindow(a, b *graph.Edge, tol float64) (float64, [2]int) {
	pa := resample(a.Geometry, overlapSamples)
	pb := resample(b.Geometry, overlapSamples)

	close := make([]bool, overlapSamples)
	count := 0
	for i := range pa {
		if dist(pa[i], pb[i]) <= tol {
			close[i] = true
			count++
		}
	}
	if count == 0 {
		return 0, [2]int{}
	}

	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i, ok := range close {
		if ok {
			if curStart < 0 {
				curStart = i
			}
			curLen++
			if curLen > bestLen {
				bestLen, bestStart = curLen, curStart
			}
		} else {
			curStart, curLen = -1, 0
		}
	}
	return float64(count) / float64(overlapSamples), [2]int{bestStart, bestStart + bestLen - 1}
}

// isFullOverlap reports whether a candidate's window spans (approximately)
// the entirety of both geometries, i.e. a straight merge (rather than a
// split-then-merge) applies.
func isFullOverlap(c candidate, tau float64) bool {
	span := float64(c.window[1]-c.window[0]+1) / float64(overlapSamples)
	return c.frac >= tau && span >= tau
}

// mergeEdges merges edge b into edge a: the union of their line bundles
// becomes a's bundle, and a's geometry becomes the Fréchet-median polyline
// (§4.B operation 1). b is removed from the graph. Lines present in both
// bundles keep a's occurrence but record b's relatives.
func mergeEdges(g *graph.LineGraph, a, b graph.EdgeID) {
	ea, _ := g.Edge(a)
	eb, _ := g.Edge(b)

	byLine := make(map[graph.LineID]graph.LineOccurrence, len(ea.Bundle)+len(eb.Bundle))
	for _, occ := range ea.Bundle {
		byLine[occ.Line.ID] = occ
	}
	for _, occ := range eb.Bundle {
		if existing, ok := byLine[occ.Line.ID]; ok {
			existing.Relatives = append(append([]graph.LineID{}, existing.Relatives...), occ.Relatives...)
			byLine[occ.Line.ID] = existing
		} else {
			byLine[occ.Line.ID] = occ
		}
	}
	merged := make([]graph.LineOccurrence, 0, len(byLine))
	for _, occ := range byLine {
		merged = append(merged, occ)
	}
	slices.SortFunc(merged, func(x, y graph.LineOccurrence) int {
		if x.Line.ID < y.Line.ID {
			return -1
		}
		if x.Line.ID > y.Line.ID {
			return 1
		}
		return 0
	})

	n := len(ea.Geometry)
	if n < 2 {
		n = 2
	}
	ea.Geometry = frechetMedian(ea.Geometry, eb.Geometry, n)
	ea.Bundle = merged
	g.RemoveEdge(b)
}

// aggregate repeatedly finds the strongest remaining full-overlap
// candidate and merges it, until none remain. Partial-overlap candidates
// are left for splitPartialOverlaps.
func aggregate(g *graph.LineGraph, opts Options) {
	for {
		cands := findCandidates(g, opts)
		merged := false
		for _, c := range cands {
			if _, ok := g.Edge(c.a); !ok {
				continue
			}
			if _, ok := g.Edge(c.b); !ok {
				continue
			}
			if isFullOverlap(c, opts.OverlapFraction) {
				mergeEdges(g, c.a, c.b)
				merged = true
				break
			}
		}
		if !merged {
			return
		}
	}
}

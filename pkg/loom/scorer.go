package loom

import (
	"sort"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
)

// Score tallies the three ways a candidate line order can cost a
// schematic clarity points: lines that share two edges and cross
// between them (Same), lines that terminate or branch off mid-bundle
// and have to thread past continuing lines to reach the edge boundary
// (Diff), and bundles whose lines destined for the same onward edge end
// up scattered rather than held together (Split).
type Score struct {
	Same, Diff, Split int
}

// Weights turns a Score into a single scalar the orderers minimize.
type Weights struct {
	Same, Diff, Split float64
}

// DefaultWeights favours removing same-segment crossings most strongly,
// since those are the ones a reader's eye actually follows through a
// junction; splits are penalized above diff-crossings because a broken
// bundle reads as a topology error rather than a stylistic wobble.
var DefaultWeights = Weights{Same: 1.0, Diff: 0.5, Split: 2.0}

// Weighted combines a Score into a scalar using w.
func (s Score) Weighted(w Weights) float64 {
	return w.Same*float64(s.Same) + w.Diff*float64(s.Diff) + w.Split*float64(s.Split)
}

// Add returns the element-wise sum of two scores.
func (s Score) Add(other Score) Score {
	return Score{Same: s.Same + other.Same, Diff: s.Diff + other.Diff, Split: s.Split + other.Split}
}

// Scorer evaluates the quality of the line order currently stored in an
// OptGraph's edge bundles.
type Scorer interface {
	// Score returns the aggregate crossing/split tally across every
	// junction of og.
	Score(og *optgraph.OptGraph) Score

	// EdgeCost returns the portion of the score attributable to a single
	// edge's interactions with its immediate neighbours, for use as a
	// local-search or branch-and-bound objective.
	EdgeCost(og *optgraph.OptGraph, id optgraph.OptEdgeID, w Weights) float64
}

// DefaultScorer is the Scorer every orderer in this package uses unless
// told otherwise. It holds a CrossingWorkspace to avoid reallocating a
// Fenwick tree on every pair of edges scored.
type DefaultScorer struct {
	ws *CrossingWorkspace
}

// NewDefaultScorer returns a ready-to-use DefaultScorer.
func NewDefaultScorer() *DefaultScorer {
	return &DefaultScorer{ws: NewCrossingWorkspace(16)}
}

func (s *DefaultScorer) Score(og *optgraph.OptGraph) Score {
	var total Score
	for _, nid := range og.SortedNodeIDs() {
		edges := og.IncidentEdges(nid)
		for i := 0; i < len(edges); i++ {
			for j := i + 1; j < len(edges); j++ {
				e1, _ := og.Edge(edges[i])
				e2, _ := og.Edge(edges[j])
				same, diff := edgePairCrossings(e1, e2, s.ws)
				total.Same += same
				total.Diff += diff
			}
		}
		for _, eid := range edges {
			e, _ := og.Edge(eid)
			total.Split += splitViolations(e, edges, og, nid)
		}
	}
	return total
}

func (s *DefaultScorer) EdgeCost(og *optgraph.OptGraph, id optgraph.OptEdgeID, w Weights) float64 {
	e, ok := og.Edge(id)
	if !ok {
		return 0
	}
	var sc Score
	for _, nid := range []optgraph.OptNodeID{e.From, e.To} {
		edges := og.IncidentEdges(nid)
		for _, other := range edges {
			if other == id {
				continue
			}
			oe, _ := og.Edge(other)
			same, diff := edgePairCrossings(e, oe, s.ws)
			sc.Same += same
			sc.Diff += diff
		}
		sc.Split += splitViolations(e, edges, og, nid)
	}
	return sc.Weighted(w)
}

// edgePairCrossings returns the same-segment and different-segment
// crossing counts contributed by a single pair of edges meeting at a
// shared node. It is symmetric in e1/e2.
func edgePairCrossings(e1, e2 *optgraph.OptEdge, ws *CrossingWorkspace) (same, diff int) {
	pos1 := bundlePositions(e1)
	pos2 := bundlePositions(e2)

	var common []graph.LineID
	for id := range pos1 {
		if _, ok := pos2[id]; ok {
			common = append(common, id)
		}
	}

	if len(common) >= 2 {
		sort.Slice(common, func(i, j int) bool { return pos1[common[i]] < pos1[common[j]] })
		rank2 := make(map[graph.LineID]int, len(common))
		byPos2 := append([]graph.LineID{}, common...)
		sort.Slice(byPos2, func(i, j int) bool { return pos2[byPos2[i]] < pos2[byPos2[j]] })
		for rank, id := range byPos2 {
			rank2[id] = rank
		}
		seq := make([]int, len(common))
		for i, id := range common {
			seq[i] = rank2[id]
		}
		same = ws.CountInversions(seq)
	}

	commonSet := make(map[graph.LineID]bool, len(common))
	for _, id := range common {
		commonSet[id] = true
	}
	diff += exclusiveThreadingCost(e1, pos1, commonSet)
	diff += exclusiveThreadingCost(e2, pos2, commonSet)
	return same, diff
}

// exclusiveThreadingCost estimates, for each line in e that does not
// continue onto the paired edge, the minimum number of common lines it
// must cross to reach whichever side of the bundle is nearer: the count
// of common lines strictly before it, or strictly after it, whichever
// is smaller.
func exclusiveThreadingCost(e *optgraph.OptEdge, pos map[graph.LineID]int, common map[graph.LineID]bool) int {
	if len(common) == 0 {
		return 0
	}
	commonPos := make([]int, 0, len(common))
	for id := range common {
		if p, ok := pos[id]; ok {
			commonPos = append(commonPos, p)
		}
	}
	sort.Ints(commonPos)

	total := 0
	for id, p := range pos {
		if common[id] {
			continue
		}
		before := sort.SearchInts(commonPos, p)
		after := len(commonPos) - before
		if before < after {
			total += before
		} else {
			total += after
		}
	}
	return total
}

func bundlePositions(e *optgraph.OptEdge) map[graph.LineID]int {
	pos := make(map[graph.LineID]int, len(e.Bundle))
	for i, occ := range e.Bundle {
		pos[occ.Line.ID] = i
	}
	return pos
}

// splitViolations counts, for a single edge's bundle at one of its
// endpoint nodes, how many lines destined for the same onward edge end
// up in non-contiguous runs within e's order. A line that terminates at
// the node (no other incident edge carries it) never contributes.
func splitViolations(e *optgraph.OptEdge, edgesAtNode []optgraph.OptEdgeID, og *optgraph.OptGraph, nid optgraph.OptNodeID) int {
	keys := make([]optgraph.OptEdgeID, len(e.Bundle))
	for i, occ := range e.Bundle {
		keys[i] = -1
		for _, other := range edgesAtNode {
			if other == e.ID {
				continue
			}
			oe, ok := og.Edge(other)
			if !ok {
				continue
			}
			if _, found := oe.LineAt(occ.Line.ID); found {
				keys[i] = other
				break
			}
		}
	}

	runs := make(map[optgraph.OptEdgeID]int)
	for i, k := range keys {
		if k == -1 {
			continue
		}
		if i == 0 || keys[i-1] != k {
			runs[k]++
		}
	}
	violations := 0
	for _, r := range runs {
		violations += r - 1
	}
	return violations
}

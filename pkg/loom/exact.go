package loom

import (
	"context"
	"fmt"
	"time"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/loom/perm"
	"github.com/transitdraw/transitmap/pkg/loom/solver"
	"github.com/transitdraw/transitmap/pkg/optgraph"
)

// maxEnumeratedOrderings bounds how many PQ-tree-valid permutations a
// single edge's bundle may be exhaustively enumerated over before Exact
// falls back to branch-and-bound instead.
const maxEnumeratedOrderings = 4096

// Exact orders each edge bundle to minimize its weighted Score against
// its immediate neighbours, one edge at a time, sweeping the whole
// graph for Rounds passes (a coordinate-descent schedule: the true
// objective couples every edge meeting at a node, so there is no single
// global linear program to hand to a solver, but holding every other
// edge fixed while optimizing one reduces each step to a problem a
// branch-and-bound search can close exactly).
//
// Within a single edge, destination-consecutiveness constraints (lines
// bound for the same onward edge must stay contiguous, never scoring a
// Split) are built as a PQ-tree. When the tree's valid permutation count
// is small enough, every valid ordering is enumerated directly and
// scored; otherwise the search falls back to solver.BranchAndBound,
// whose CostFunc callback evaluates the true (non-linear) weighted
// score on each candidate leaf.
type Exact struct {
	Scorer  Scorer
	Weights Weights
	Rounds  int
	Timeout time.Duration
}

func (x *Exact) weights() Weights {
	if x.Weights == (Weights{}) {
		return DefaultWeights
	}
	return x.Weights
}

func (x *Exact) OrderLines(g *graph.LineGraph, og *optgraph.OptGraph) error {
	return x.OrderLinesContext(context.Background(), g, og)
}

func (x *Exact) OrderLinesContext(ctx context.Context, g *graph.LineGraph, og *optgraph.OptGraph) error {
	rounds := x.Rounds
	if rounds <= 0 {
		rounds = 3
	}
	if x.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.Timeout)
		defer cancel()
	}
	w := x.weights()
	ws := NewCrossingWorkspace(16)
	ids := og.SortedEdgeIDs()

	for round := 0; round < rounds; round++ {
		select {
		case <-ctx.Done():
			return finalizeBundles(g, og, ids)
		default:
		}
		for _, id := range ids {
			if err := x.optimizeEdge(ctx, og, ws, w, id); err != nil {
				return err
			}
		}
	}
	return finalizeBundles(g, og, ids)
}

func (x *Exact) optimizeEdge(ctx context.Context, og *optgraph.OptGraph, ws *CrossingWorkspace, w Weights, id optgraph.OptEdgeID) error {
	e, ok := og.Edge(id)
	if !ok || len(e.Bundle) < 2 {
		return nil
	}
	k := len(e.Bundle)
	tree := perm.NewPQTree(k)
	for _, grp := range destinationGroups(e, og.IncidentEdges(e.From), og) {
		tree.Reduce(grp)
	}
	for _, grp := range destinationGroups(e, og.IncidentEdges(e.To), og) {
		tree.Reduce(grp)
	}

	base := append([]graph.LineOccurrence{}, e.Bundle...)
	cost := func(order []int) float64 {
		candidate := make([]graph.LineOccurrence, k)
		for slot, line := range order {
			candidate[slot] = base[line]
		}
		return candidateCost(og, e, candidate, w, ws)
	}

	var best []int
	bestCost := cost(identityOrder(k))

	if tree.ValidCount() <= maxEnumeratedOrderings {
		for _, ordering := range tree.Enumerate(0) {
			select {
			case <-ctx.Done():
				best = bestOrNil(best, identityOrder(k))
				goto apply
			default:
			}
			if c := cost(ordering); best == nil || c < bestCost {
				bestCost = c
				best = append([]int{}, ordering...)
			}
		}
	} else {
		bb := solver.NewBranchAndBound()
		cols := make([][]int, k)
		for li := 0; li < k; li++ {
			cols[li] = make([]int, k)
			for sj := 0; sj < k; sj++ {
				cols[li][sj] = bb.AddCol(fmt.Sprintf("line%d_slot%d", li, sj))
			}
		}
		for li := 0; li < k; li++ {
			for sj := 0; sj < k; sj++ {
				drift := li - sj
				if drift < 0 {
					drift = -drift
				}
				bb.AddColToRow(solver.ObjectiveRow, cols[li][sj], float64(drift))
			}
		}
		bb.CostFunc = func(assignment []int) float64 {
			order := make([]int, k)
			for line, slot := range assignment {
				order[slot] = line
			}
			return cost(order)
		}
		if err := bb.Update(); err != nil {
			return err
		}
		if err := bb.Solve(ctx); err == nil {
			if a := bb.Assignment(); a != nil {
				order := make([]int, k)
				for line, slot := range a {
					order[slot] = line
				}
				best = order
			}
		}
	}

apply:
	if best == nil {
		return nil
	}
	newBundle := make([]graph.LineOccurrence, k)
	for slot, line := range best {
		newBundle[slot] = base[line]
	}
	e.Bundle = newBundle
	return nil
}

func bestOrNil(best, fallback []int) []int {
	if best != nil {
		return best
	}
	return fallback
}

func identityOrder(k int) []int {
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	return order
}

// candidateCost evaluates the weighted Score a bundle replacement would
// contribute at e's two endpoints, without mutating e itself.
func candidateCost(og *optgraph.OptGraph, e *optgraph.OptEdge, candidate []graph.LineOccurrence, w Weights, ws *CrossingWorkspace) float64 {
	temp := &optgraph.OptEdge{ID: e.ID, From: e.From, To: e.To, Bundle: candidate}
	var sc Score
	for _, nid := range []optgraph.OptNodeID{e.From, e.To} {
		edges := og.IncidentEdges(nid)
		for _, other := range edges {
			if other == e.ID {
				continue
			}
			oe, ok := og.Edge(other)
			if !ok {
				continue
			}
			same, diff := edgePairCrossings(temp, oe, ws)
			sc.Same += same
			sc.Diff += diff
		}
		sc.Split += splitViolations(temp, edges, og, nid)
	}
	return sc.Weighted(w)
}

// destinationGroups partitions e's bundle indices (by current Bundle
// order) by which other incident edge at node carries the same line, as
// a set of index groups suitable for PQTree.Reduce. Lines that terminate
// at node are left out of every group.
func destinationGroups(e *optgraph.OptEdge, edgesAtNode []optgraph.OptEdgeID, og *optgraph.OptGraph) [][]int {
	groups := make(map[optgraph.OptEdgeID][]int)
	for i, occ := range e.Bundle {
		for _, other := range edgesAtNode {
			if other == e.ID {
				continue
			}
			oe, ok := og.Edge(other)
			if !ok {
				continue
			}
			if _, found := oe.LineAt(occ.Line.ID); found {
				groups[other] = append(groups[other], i)
				break
			}
		}
	}
	out := make([][]int, 0, len(groups))
	for _, g := range groups {
		if len(g) >= 2 {
			out = append(out, g)
		}
	}
	return out
}

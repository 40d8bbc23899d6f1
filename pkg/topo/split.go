package topo

import (
	"fmt"
	"slices"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
)

// maxSplitRounds bounds the split/re-aggregate fixed point so a pathological
// input (near-tangent geometries that keep re-triggering marginal windows)
// cannot loop forever.
const maxSplitRounds = 64

// splitPartialOverlaps converts candidates whose overlap window covers only
// part of both edges into three pieces each (prefix, overlapping middle,
// suffix), so the middle pieces become full-overlap candidates for a
// subsequent aggregate pass (§4.B operation 2).
func splitPartialOverlaps(g *graph.LineGraph, opts Options) {
	for round := 0; round < maxSplitRounds; round++ {
		cands := findCandidates(g, opts)
		split := false
		for _, c := range cands {
			if isFullOverlap(c, opts.OverlapFraction) {
				continue
			}
			if _, ok := g.Edge(c.a); !ok {
				continue
			}
			if _, ok := g.Edge(c.b); !ok {
				continue
			}
			span := float64(c.window[1]-c.window[0]+1) / float64(overlapSamples)
			if span < opts.OverlapFraction/2 {
				continue
			}
			startFrac := float64(c.window[0]) / float64(overlapSamples-1)
			endFrac := float64(c.window[1]) / float64(overlapSamples-1)
			splitEdgeAtFractions(g, c.a, []float64{startFrac, endFrac})
			splitEdgeAtFractions(g, c.b, []float64{startFrac, endFrac})
			split = true
			break
		}
		if !split {
			return
		}
		aggregate(g, opts)
	}
}

// splitEdgeAtFractions cuts edge id at the given arc-length fractions
// (each strictly between 0 and 1), inserting a new degree-2 node at every
// cut point and returning the resulting edge IDs in order from From to To.
// Fractions outside (0, 1) are ignored; an empty result after filtering
// leaves the edge untouched.
func splitEdgeAtFractions(g *graph.LineGraph, id graph.EdgeID, fracs []float64) []graph.EdgeID {
	e, ok := g.Edge(id)
	if !ok {
		return nil
	}

	cut := make([]float64, 0, len(fracs))
	for _, f := range fracs {
		if f > 1e-6 && f < 1-1e-6 {
			cut = append(cut, f)
		}
	}
	slices.Sort(cut)
	cut = slices.Compact(cut)
	if len(cut) == 0 {
		return []graph.EdgeID{id}
	}

	total := arcLength(e.Geometry)
	bounds := make([]float64, 0, len(cut)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, cut...)
	bounds = append(bounds, 1)

	nodeChain := make([]graph.NodeID, 0, len(cut)+2)
	nodeChain = append(nodeChain, e.From)
	for i, f := range cut {
		p := pointAtArcLength(e.Geometry, total*f)
		nid := g.AddNode(graph.Node{ExtID: fmt.Sprintf("split-%d-%d", id, i), Pos: p})
		nodeChain = append(nodeChain, nid)
	}
	nodeChain = append(nodeChain, e.To)

	geom := e.Geometry
	bundle := e.Bundle
	g.RemoveEdge(id)

	result := make([]graph.EdgeID, 0, len(nodeChain)-1)
	for i := 0; i < len(nodeChain)-1; i++ {
		seg := sliceGeometry(geom, total*bounds[i], total*bounds[i+1])
		nid, err := g.AddEdge(graph.Edge{
			From:     nodeChain[i],
			To:       nodeChain[i+1],
			Geometry: seg,
			Bundle:   append([]graph.LineOccurrence{}, bundle...),
		})
		if err == nil {
			result = append(result, nid)
		}
	}
	return result
}

// sliceGeometry returns the portion of ls between arc-length positions
// start and end (0 <= start < end <= arcLength(ls)), with exact boundary
// points inserted via interpolation.
func sliceGeometry(ls orb.LineString, start, end float64) orb.LineString {
	out := orb.LineString{pointAtArcLength(ls, start)}
	acc := 0.0
	for i := 1; i < len(ls); i++ {
		segLen := dist(ls[i-1], ls[i])
		next := acc + segLen
		if next > start && next < end {
			out = append(out, ls[i])
		}
		acc = next
	}
	out = append(out, pointAtArcLength(ls, end))
	return out
}

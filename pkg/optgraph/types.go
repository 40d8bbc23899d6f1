package optgraph

import (
	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
)

// OptNodeID addresses an OptNode within an OptGraph's arena.
type OptNodeID int

// OptEdgeID addresses an OptEdge within an OptGraph's arena.
type OptEdgeID int

// OptNode is a contraction-surviving vertex: either a station-bound node or
// a junction whose degree in the source line graph is not 2.
type OptNode struct {
	ID     OptNodeID
	Source graph.NodeID // the node it was contracted from
}

// OptEdge is a maximal chain of degree-2, non-station nodes between two
// OptNodes, collapsed into a single edge for the optimizer.
type OptEdge struct {
	ID       OptEdgeID
	From, To OptNodeID

	// Segments lists the original edges along the chain, in order from
	// From to To.
	Segments []graph.EdgeID

	// Reversed reports, for each entry in Segments at the same index,
	// whether that underlying edge's own From/To orientation runs opposite
	// to the chain's From-to-To direction. Needed to reconstruct geometry
	// and to push ordering results back onto each segment's bundle without
	// flipping direction bits.
	Reversed []bool

	// Bundle is the line occurrence set carried by every segment in the
	// chain. Contract requires this to be identical across the whole
	// chain (topology cleanup is expected to have already merged any
	// segments that disagree); see consistentBundle.
	Bundle []graph.LineOccurrence
}

// SingleSegment reports whether this OptEdge is a direct (uncontracted)
// edge, i.e. it spans exactly one underlying segment.
func (e *OptEdge) SingleSegment() bool { return len(e.Segments) == 1 }

// LineAt returns the occurrence for the given line ID and true, or the zero
// value and false if the line does not appear on this edge.
func (e *OptEdge) LineAt(id graph.LineID) (graph.LineOccurrence, bool) {
	for _, occ := range e.Bundle {
		if occ.Line.ID == id {
			return occ, true
		}
	}
	return graph.LineOccurrence{}, false
}

// Other returns the OptNode endpoint of e that is not n, or -1 if n is not
// an endpoint of e.
func (e *OptEdge) Other(n OptNodeID) OptNodeID {
	switch n {
	case e.From:
		return e.To
	case e.To:
		return e.From
	default:
		return -1
	}
}

// Geometry reconstructs the full polyline of the chain by concatenating
// each segment's geometry (reversing it where Reversed[i] is set), reading
// from the source line graph g.
func (e *OptEdge) Geometry(g *graph.LineGraph) orb.LineString {
	var out orb.LineString
	for i, segID := range e.Segments {
		seg, ok := g.Edge(segID)
		if !ok {
			continue
		}
		pts := seg.Geometry
		if e.Reversed[i] {
			rev := make(orb.LineString, len(pts))
			for j, p := range pts {
				rev[len(pts)-1-j] = p
			}
			pts = rev
		}
		if i > 0 && len(out) > 0 && len(pts) > 0 {
			pts = pts[1:] // drop the duplicated junction point
		}
		out = append(out, pts...)
	}
	return out
}

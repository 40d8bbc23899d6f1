package octi

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/octi/gridgraph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
)

// routeOrder returns every OptEdgeID sorted by descending bundle
// cardinality, ties broken by ID, matching the spec's routing priority.
func routeOrder(og *optgraph.OptGraph) []optgraph.OptEdgeID {
	ids := og.SortedEdgeIDs()
	sort.Slice(ids, func(i, j int) bool {
		a, _ := og.Edge(ids[i])
		b, _ := og.Edge(ids[j])
		if len(a.Bundle) != len(b.Bundle) {
			return len(a.Bundle) > len(b.Bundle)
		}
		return ids[i] < ids[j]
	})
	return ids
}

// bearing returns the angle in radians of the ray from a to b, measured
// counter-clockwise from +X, matching PortDir's own angular convention
// closely enough for a linear angular-difference penalty.
func bearing(a, b orb.Point) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

// portAngle returns the approximate direction, in radians, a port
// points in on a square grid (N = +Y, E = +X, etc.), for comparison
// against a geographic bearing.
func portAngle(d gridgraph.PortDir) float64 {
	dx, dy := d.Offset()
	return math.Atan2(float64(dy), float64(dx))
}

func angularDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	if d < 0 {
		d = -d
	}
	return d
}

// RouteEdges routes every OptEdge of og across gg, in descending bundle
// cardinality order, applying spacing/topology/geographic-deviation
// penalties to each route's search, then closes the grid edges/vertices
// the route consumed so later routes cannot reuse them. On the first
// edge with no finite path, every temporary cost addition already made
// by this call is undone and a LayoutInfeasible pipelineerr is
// returned; the caller decides whether to grow the grid and retry.
func RouteEdges(g *graph.LineGraph, og *optgraph.OptGraph, gg *gridgraph.GridGraph, placement Placement, opts Options) error {
	settled := make(map[optgraph.OptNodeID][]gridgraph.PortDir)

	for _, id := range routeOrder(og) {
		e, ok := og.Edge(id)
		if !ok {
			continue
		}
		from, ok := placement[e.From]
		if !ok {
			continue
		}
		to, ok := placement[e.To]
		if !ok {
			continue
		}

		fromNode, _ := og.Node(e.From)
		toNode, _ := og.Node(e.To)
		fromPos := mustPos(g, fromNode.Source)
		toPos := mustPos(g, toNode.Source)
		idealBearing := bearing(fromPos, toPos)
		fromCell, _, _ := gg.Vertex(from)
		toCell, _, _ := gg.Vertex(to)

		extra := buildExtraCost(opts, gg, idealBearing, fromCell, toCell, settled[e.From], settled[e.To])

		path, ok := gg.ShortestPath(from, to, extra)
		if !ok {
			return pipelineerr.New(pipelineerr.CodeInfeasible, "LayoutInfeasible: no route between optgraph nodes %d and %d", e.From, e.To)
		}

		for _, eid := range path.Edges {
			gg.CloseEdge(eid)
		}
		for _, vid := range path.Vertices {
			if _, _, isCentre := gg.Vertex(vid); isCentre {
				continue // endpoints stay open; placement already closed them
			}
			gg.CloseVertex(vid)
		}
		if len(path.Vertices) >= 2 {
			if d, ok := gg.PortOf(path.Vertices[1]); ok {
				settled[e.From] = append(settled[e.From], d)
			}
			if d, ok := gg.PortOf(path.Vertices[len(path.Vertices)-2]); ok {
				settled[e.To] = append(settled[e.To], d.Opposite())
			}
		}

		writeRouteGeometry(g, og, e, path, gg, opts)
	}
	return nil
}

func mustPos(g *graph.LineGraph, id graph.NodeID) orb.Point {
	n, ok := g.Node(id)
	if !ok {
		return orb.Point{}
	}
	return n.Pos
}

// buildExtraCost builds the per-route ExtraCost covering all three
// routing penalties: geographic deviation (opts.GeoWeight, applied to
// every traversal edge by its angle against idealBearing), and, for the
// traversal edges leaving the origin or destination centre specifically,
// spacing (opts.SpacingWeight, preferring a wide angular gap from
// already-settled outgoing directions at that node) and topology
// (opts.TopologyWeight, forbidding outright reuse of a direction an
// earlier route already settled on — a simplification of the full
// cyclic-order-disagreement check, since that needs the source graph's
// neighbour ordering threaded in alongside settled directions).
func buildExtraCost(opts Options, gg *gridgraph.GridGraph, idealBearing float64, originCell, destCell gridgraph.CellCoord, originSettled, destSettled []gridgraph.PortDir) gridgraph.ExtraCost {
	return func(id gridgraph.EdgeID) float64 {
		if gg.EdgeKind(id) != gridgraph.EdgeTraversal {
			return 0
		}
		from, _, _, _ := gg.EdgeEndpoints(id)
		d, ok := gg.PortOf(from)
		if !ok {
			return 0
		}
		cell, _, _ := gg.Vertex(from)

		cost := opts.GeoWeight * angularDiff(portAngle(d), idealBearing)

		var settledHere []gridgraph.PortDir
		switch cell {
		case originCell:
			settledHere = originSettled
		case destCell:
			settledHere = destSettled
		default:
			return cost
		}

		idealGap := 8.0
		if n := len(settledHere) + 1; n > 0 {
			idealGap = 8.0/float64(n) - 1
		}
		for _, s := range settledHere {
			if s == d {
				cost += opts.TopologyWeight * 1e6
				continue
			}
			if gap := float64(d.StepsTo(s)); gap < idealGap {
				cost += opts.SpacingWeight * (idealGap - gap)
			}
		}
		return cost
	}
}

// writeRouteGeometry rewrites both endpoint nodes' Node.Pos (on every
// call) and the OptEdge's underlying segment geometry to the routed grid
// positions, per the spec's "final positions" step.
func writeRouteGeometry(g *graph.LineGraph, og *optgraph.OptGraph, e *optgraph.OptEdge, path gridgraph.PathResult, gg *gridgraph.GridGraph, opts Options) {
	line := make(orb.LineString, 0, len(path.Vertices))
	for _, vid := range path.Vertices {
		cell, _, _ := gg.Vertex(vid)
		line = append(line, cellToWorld(opts.Origin, opts.CellSize, cell))
	}

	if len(line) >= 2 {
		if fromNode, ok := og.Node(e.From); ok {
			if n, ok := g.Node(fromNode.Source); ok {
				n.Pos = line[0]
			}
		}
		if toNode, ok := og.Node(e.To); ok {
			if n, ok := g.Node(toNode.Source); ok {
				n.Pos = line[len(line)-1]
			}
		}
	}

	for _, segID := range e.Segments {
		if seg, ok := g.Edge(segID); ok {
			seg.Geometry = line
		}
	}
}

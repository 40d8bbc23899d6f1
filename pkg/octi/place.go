package octi

import (
	"sort"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/octi/gridgraph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
)

// Placement records, for every OptNode the engine placed, the grid
// centre it was assigned to.
type Placement map[optgraph.OptNodeID]gridgraph.VertexID

func worldToCell(origin orb.Point, cellSize float64, p orb.Point) gridgraph.CellCoord {
	return gridgraph.CellCoord{
		X: int((p[0] - origin[0]) / cellSize),
		Y: int((p[1] - origin[1]) / cellSize),
	}
}

func cellToWorld(origin orb.Point, cellSize float64, c gridgraph.CellCoord) orb.Point {
	return orb.Point{
		origin[0] + (float64(c.X)+0.5)*cellSize,
		origin[1] + (float64(c.Y)+0.5)*cellSize,
	}
}

// placementOrder ranks every OptNode by descending degree, ties broken
// by descending summed incident-edge line cardinality, then ascending
// ID — the priority the spec gives for picking which node's candidate
// grid vertex is resolved first.
func placementOrder(og *optgraph.OptGraph) []optgraph.OptNodeID {
	ids := og.SortedNodeIDs()
	degree := make(map[optgraph.OptNodeID]int, len(ids))
	cardinality := make(map[optgraph.OptNodeID]int, len(ids))
	for _, id := range ids {
		edges := og.IncidentEdges(id)
		degree[id] = len(edges)
		sum := 0
		for _, eid := range edges {
			if e, ok := og.Edge(eid); ok {
				sum += len(e.Bundle)
			}
		}
		cardinality[id] = sum
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if degree[a] != degree[b] {
			return degree[a] > degree[b]
		}
		if cardinality[a] != cardinality[b] {
			return cardinality[a] > cardinality[b]
		}
		return a < b
	})
	return ids
}

// candidateCells returns every cell within Chebyshev distance maxDis of
// ideal, sorted nearest-first (ties broken by (x, y) for determinism).
func candidateCells(ideal gridgraph.CellCoord, maxDis int) []gridgraph.CellCoord {
	var cells []gridgraph.CellCoord
	for dx := -maxDis; dx <= maxDis; dx++ {
		for dy := -maxDis; dy <= maxDis; dy++ {
			cells = append(cells, gridgraph.CellCoord{X: ideal.X + dx, Y: ideal.Y + dy})
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		di := chebyshev(cells[i], ideal)
		dj := chebyshev(cells[j], ideal)
		if di != dj {
			return di < dj
		}
		if cells[i].X != cells[j].X {
			return cells[i].X < cells[j].X
		}
		return cells[i].Y < cells[j].Y
	})
	return cells
}

func chebyshev(a, b gridgraph.CellCoord) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// PlaceStations assigns every OptNode of og a distinct open grid centre,
// processing nodes in placementOrder and picking the nearest open
// candidate to its source position within opts.MaxDis. It fails with a
// pipelineerr.CodeInfeasible LayoutInfeasible error on the first node
// with no open candidate in range.
func PlaceStations(g *graph.LineGraph, og *optgraph.OptGraph, gg *gridgraph.GridGraph, opts Options) (Placement, error) {
	placement := make(Placement, og.NodeCount())

	for _, id := range placementOrder(og) {
		node, ok := og.Node(id)
		if !ok {
			continue
		}
		src, ok := g.Node(node.Source)
		if !ok {
			return nil, pipelineerr.New(pipelineerr.CodeDanglingReference, "optgraph node %d references missing source node", id).WithEntity(strconv.Itoa(int(id)))
		}
		ideal := worldToCell(opts.Origin, opts.CellSize, src.Pos)

		cells := candidateCells(ideal, opts.MaxDis)
		if pinned, ok := opts.Pinned[id]; ok {
			cells = append([]gridgraph.CellCoord{pinned}, cells...)
		}

		placed := false
		for _, cell := range cells {
			centre, ok := gg.CentreID(cell)
			if !ok || gg.IsVertexClosed(centre) {
				continue
			}
			gg.Occupy(centre, nodeOccupantKey(id))
			placement[id] = centre
			placed = true
			break
		}
		if !placed {
			return nil, pipelineerr.New(pipelineerr.CodeInfeasible,
				"LayoutInfeasible: no open grid vertex within %d cells of node %d", opts.MaxDis, id).
				WithEntity(strconv.Itoa(int(id)))
		}
	}
	return placement, nil
}

func nodeOccupantKey(id optgraph.OptNodeID) string {
	return "optnode:" + strconv.Itoa(int(id))
}

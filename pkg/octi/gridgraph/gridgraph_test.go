package gridgraph

import "testing"

func allCells(w, h int) []CellCoord {
	cells := make([]CellCoord, 0, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			cells = append(cells, CellCoord{X: x, Y: y})
		}
	}
	return cells
}

func TestBendCostInvariant(t *testing.T) {
	b := DefaultBendCost
	if !(b.P0 < b.P135 && b.P135 < b.P90 && b.P90 < b.P45) {
		t.Fatalf("bend cost invariant violated: %+v", b)
	}
}

func TestOppositeIsInvolution(t *testing.T) {
	for d := PortDir(0); int(d) < numPorts; d++ {
		if d.Opposite().Opposite() != d {
			t.Fatalf("Opposite is not an involution for %v", d)
		}
	}
}

func TestNewGridGraphWiresTraversalEdges(t *testing.T) {
	topo := NewOctilinear(3, 3)
	gg := NewGridGraph(topo, DefaultCostModel, allCells(3, 3))

	centre, ok := gg.CentreID(CellCoord{X: 1, Y: 1})
	if !ok {
		t.Fatal("missing centre for (1,1)")
	}
	portE, ok := gg.PortID(CellCoord{X: 1, Y: 1}, DirE)
	if !ok {
		t.Fatal("missing E port for (1,1)")
	}

	foundSink := false
	for _, eid := range gg.Edges(centre) {
		from, to, _, _ := gg.EdgeEndpoints(eid)
		if from == centre && to == portE {
			foundSink = true
		}
	}
	if !foundSink {
		t.Fatal("expected a sink edge from centre to its E port")
	}

	foundTraversal := false
	neighbourCentre, _ := gg.CentreID(CellCoord{X: 2, Y: 1})
	neighbourPortW, _ := gg.PortID(CellCoord{X: 2, Y: 1}, DirW)
	_ = neighbourCentre
	for _, eid := range gg.Edges(portE) {
		_, to, _, _ := gg.EdgeEndpoints(eid)
		if to == neighbourPortW {
			foundTraversal = true
		}
	}
	if !foundTraversal {
		t.Fatal("expected a traversal edge from (1,1)'s E port to (2,1)'s W port")
	}
}

func TestShortestPathFindsStraightRoute(t *testing.T) {
	topo := NewOctilinear(5, 5)
	gg := NewGridGraph(topo, DefaultCostModel, allCells(5, 5))

	from, _ := gg.CentreID(CellCoord{X: 0, Y: 2})
	to, _ := gg.CentreID(CellCoord{X: 4, Y: 2})

	path, ok := gg.ShortestPath(from, to, nil)
	if !ok {
		t.Fatal("expected a path across an open grid")
	}
	if path.Vertices[0] != from || path.Vertices[len(path.Vertices)-1] != to {
		t.Fatalf("path endpoints mismatch: %v", path.Vertices)
	}
}

func TestShortestPathFailsThroughClosedVertices(t *testing.T) {
	topo := NewOctilinear(3, 1)
	gg := NewGridGraph(topo, DefaultCostModel, allCells(3, 1))

	from, _ := gg.CentreID(CellCoord{X: 0, Y: 0})
	to, _ := gg.CentreID(CellCoord{X: 2, Y: 0})
	mid, _ := gg.CentreID(CellCoord{X: 1, Y: 0})
	for _, d := range []PortDir{DirE, DirW, DirN, DirS, DirNE, DirNW, DirSE, DirSW} {
		if p, ok := gg.PortID(CellCoord{X: 1, Y: 0}, d); ok {
			gg.CloseVertex(p)
		}
	}
	gg.CloseVertex(mid)

	if _, ok := gg.ShortestPath(from, to, nil); ok {
		t.Fatal("expected no path once every port of the only connecting cell is closed")
	}
}

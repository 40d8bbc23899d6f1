package optgraph

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
)

// chainGraph builds station A -- (two waypoint bends) -- station B, all on
// one line, so Contract should collapse it to a single OptEdge spanning 3
// segments.
func chainGraph(t *testing.T) (*graph.LineGraph, graph.NodeID, graph.NodeID) {
	t.Helper()
	g := graph.New()
	red := g.AddLine(graph.Line{ID: "red", Label: "Red"})

	a := g.AddNode(graph.Node{ExtID: "a", Pos: orb.Point{0, 0}, Station: &graph.Station{ID: "sa", Name: "Alpha"}})
	w1 := g.AddNode(graph.Node{ExtID: "w1", Pos: orb.Point{1, 0}})
	w2 := g.AddNode(graph.Node{ExtID: "w2", Pos: orb.Point{2, 0}})
	b := g.AddNode(graph.Node{ExtID: "b", Pos: orb.Point{3, 0}, Station: &graph.Station{ID: "sb", Name: "Beta"}})

	occ := []graph.LineOccurrence{{Line: red, Direction: graph.DirForward, Relatives: []graph.LineID{"red"}, Order: -1}}
	mustAdd := func(from, to graph.NodeID, geom orb.LineString) {
		if _, err := g.AddEdge(graph.Edge{From: from, To: to, Geometry: geom, Bundle: occ}); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	mustAdd(a, w1, orb.LineString{{0, 0}, {1, 0}})
	mustAdd(w1, w2, orb.LineString{{1, 0}, {2, 0}})
	mustAdd(w2, b, orb.LineString{{2, 0}, {3, 0}})

	return g, a, b
}

func TestContractCollapsesDegreeTwoChain(t *testing.T) {
	g, a, b := chainGraph(t)

	og, err := Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	if og.NodeCount() != 2 {
		t.Fatalf("expected 2 OptNodes (the two stations), got %d", og.NodeCount())
	}
	if og.EdgeCount() != 1 {
		t.Fatalf("expected 1 OptEdge, got %d", og.EdgeCount())
	}

	na, ok := og.NodeBySource(a)
	if !ok {
		t.Fatal("missing OptNode for station a")
	}
	nb, ok := og.NodeBySource(b)
	if !ok {
		t.Fatal("missing OptNode for station b")
	}

	e := og.Edges()[0]
	if len(e.Segments) != 3 {
		t.Fatalf("expected 3 contracted segments, got %d", len(e.Segments))
	}
	if (e.From != na.ID || e.To != nb.ID) && (e.From != nb.ID || e.To != na.ID) {
		t.Fatalf("OptEdge does not connect the two stations")
	}

	geom := e.Geometry(g)
	if len(geom) == 0 {
		t.Fatal("reconstructed geometry should not be empty")
	}
}

func TestContractPreservesBranchingNodes(t *testing.T) {
	g := graph.New()
	red := g.AddLine(graph.Line{ID: "red", Label: "Red"})
	occ := []graph.LineOccurrence{{Line: red, Direction: graph.DirForward, Relatives: []graph.LineID{"red"}, Order: -1}}

	hub := g.AddNode(graph.Node{ExtID: "hub", Pos: orb.Point{0, 0}})
	x := g.AddNode(graph.Node{ExtID: "x", Pos: orb.Point{1, 0}})
	y := g.AddNode(graph.Node{ExtID: "y", Pos: orb.Point{-1, 0}})
	z := g.AddNode(graph.Node{ExtID: "z", Pos: orb.Point{0, 1}})

	for _, pair := range [][2]graph.NodeID{{hub, x}, {hub, y}, {hub, z}} {
		if _, err := g.AddEdge(graph.Edge{From: pair[0], To: pair[1], Geometry: orb.LineString{{0, 0}, {1, 0}}, Bundle: occ}); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}

	og, err := Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	if og.NodeCount() != 4 {
		t.Fatalf("expected all 4 nodes to survive (degree-3 hub + 3 leaves), got %d", og.NodeCount())
	}
	if og.EdgeCount() != 3 {
		t.Fatalf("expected 3 direct OptEdges, got %d", og.EdgeCount())
	}
	for _, e := range og.Edges() {
		if !e.SingleSegment() {
			t.Fatalf("leaf spokes should not be contracted")
		}
	}
}

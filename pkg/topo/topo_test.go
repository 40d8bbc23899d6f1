package topo

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
)

// twoParallelLines builds two stations connected by two near-identical
// edges belonging to different lines, close enough to be aggregated.
func twoParallelLines(t *testing.T) *graph.LineGraph {
	t.Helper()
	g := graph.New()
	red := g.AddLine(graph.Line{ID: "red", Label: "Red"})
	blue := g.AddLine(graph.Line{ID: "blue", Label: "Blue"})

	a := g.AddNode(graph.Node{ExtID: "a", Pos: orb.Point{0, 0}, Station: &graph.Station{ID: "sa", Name: "Alpha"}})
	b := g.AddNode(graph.Node{ExtID: "b", Pos: orb.Point{100, 0}, Station: &graph.Station{ID: "sb", Name: "Beta"}})

	if _, err := g.AddEdge(graph.Edge{
		From:     a,
		To:       b,
		Geometry: orb.LineString{{0, 0}, {50, 0}, {100, 0}},
		Bundle:   []graph.LineOccurrence{{Line: red, Direction: graph.DirForward, Relatives: []graph.LineID{"red"}, Order: -1}},
	}); err != nil {
		t.Fatalf("AddEdge red: %v", err)
	}
	if _, err := g.AddEdge(graph.Edge{
		From:     a,
		To:       b,
		Geometry: orb.LineString{{0, 5}, {50, 5}, {100, 5}},
		Bundle:   []graph.LineOccurrence{{Line: blue, Direction: graph.DirForward, Relatives: []graph.LineID{"blue"}, Order: -1}},
	}); err != nil {
		t.Fatalf("AddEdge blue: %v", err)
	}
	return g
}

func TestBuildAggregatesParallelEdges(t *testing.T) {
	g := twoParallelLines(t)
	opts := DefaultOptions()
	opts.MaxAggrDist = 10

	if err := Build(g, opts); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.EdgeCount() != 1 {
		t.Fatalf("expected one merged edge, got %d", g.EdgeCount())
	}
	for _, e := range g.Edges() {
		if len(e.Bundle) != 2 {
			t.Fatalf("expected merged bundle with both lines, got %d occurrences", len(e.Bundle))
		}
	}
}

func TestBuildRejectsInvalidOptions(t *testing.T) {
	g := graph.New()
	opts := DefaultOptions()
	opts.MaxAggrDist = 0
	if err := Build(g, opts); err == nil {
		t.Fatal("expected error for non-positive MaxAggrDist")
	}
}

func TestDoubletMergeCollapsesCoincidentNodes(t *testing.T) {
	g := graph.New()
	a := g.AddNode(graph.Node{ExtID: "a", Pos: orb.Point{0, 0}})
	b := g.AddNode(graph.Node{ExtID: "b", Pos: orb.Point{0, 0}})
	c := g.AddNode(graph.Node{ExtID: "c", Pos: orb.Point{10, 0}})
	if _, err := g.AddEdge(graph.Edge{From: a, To: c, Geometry: orb.LineString{{0, 0}, {10, 0}}}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	_ = b

	doubletMerge(g, 1e-6)
	if g.NodeCount() != 2 {
		t.Fatalf("expected the two coincident nodes collapsed into one, leaving 2 nodes, got %d", g.NodeCount())
	}
}

func TestClusterStationsMergesNearbyStations(t *testing.T) {
	g := graph.New()
	a := g.AddNode(graph.Node{ExtID: "a", Pos: orb.Point{0, 0}, Station: &graph.Station{ID: "sa", Name: "Alpha"}})
	b := g.AddNode(graph.Node{ExtID: "b", Pos: orb.Point{0.5, 0}, Station: &graph.Station{ID: "sb", Name: "Alpha Annex"}})
	c := g.AddNode(graph.Node{ExtID: "c", Pos: orb.Point{100, 0}, Station: &graph.Station{ID: "sc", Name: "Gamma"}})
	if _, err := g.AddEdge(graph.Edge{From: b, To: c, Geometry: orb.LineString{{0.5, 0}, {100, 0}}}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	_ = a

	opts := DefaultOptions()
	opts.ClusterTolerance = 1
	clusterStations(g, opts)

	if g.NodeCount() != 2 {
		t.Fatalf("expected stations a and b merged, got %d nodes", g.NodeCount())
	}
}

func TestSplitEdgeAtFractionsPreservesEndpoints(t *testing.T) {
	g := graph.New()
	a := g.AddNode(graph.Node{ExtID: "a", Pos: orb.Point{0, 0}})
	b := g.AddNode(graph.Node{ExtID: "b", Pos: orb.Point{10, 0}})
	id, err := g.AddEdge(graph.Edge{From: a, To: b, Geometry: orb.LineString{{0, 0}, {10, 0}}})
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	ids := splitEdgeAtFractions(g, id, []float64{0.5})
	if len(ids) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(ids))
	}
	if g.NodeCount() != 3 {
		t.Fatalf("expected one new node inserted, got %d nodes", g.NodeCount())
	}

	first, _ := g.Edge(ids[0])
	second, _ := g.Edge(ids[1])
	if first.From != a {
		t.Fatalf("first piece should start at original From")
	}
	if second.To != b {
		t.Fatalf("second piece should end at original To")
	}
	if first.To != second.From {
		t.Fatalf("pieces should share the new midpoint node")
	}
}

func TestChaikinPreservesEndpoints(t *testing.T) {
	ls := orb.LineString{{0, 0}, {5, 5}, {10, 0}}
	out := chaikin(ls, smoothToCut(20))
	if out[0] != ls[0] {
		t.Fatalf("chaikin moved the first point: %v", out[0])
	}
	if out[len(out)-1] != ls[len(ls)-1] {
		t.Fatalf("chaikin moved the last point: %v", out[len(out)-1])
	}
}

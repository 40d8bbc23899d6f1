package octi

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/octi/gridgraph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
)

// lineGraph builds a three-station line: west -- hub -- east, one line
// running straight across, positioned so a small grid comfortably fits
// both placement and routing.
func lineGraph(t *testing.T) *graph.LineGraph {
	t.Helper()
	g := graph.New()
	red := g.AddLine(graph.Line{ID: "red", Label: "Red"})

	west := g.AddNode(graph.Node{ExtID: "west", Pos: orb.Point{0, 0}, Station: &graph.Station{ID: "sw", Name: "West"}})
	hub := g.AddNode(graph.Node{ExtID: "hub", Pos: orb.Point{10, 0}, Station: &graph.Station{ID: "sh", Name: "Hub"}})
	east := g.AddNode(graph.Node{ExtID: "east", Pos: orb.Point{20, 0}, Station: &graph.Station{ID: "se", Name: "East"}})

	bundle := []graph.LineOccurrence{{Line: red, Direction: graph.DirForward, Relatives: []graph.LineID{"red"}, Order: -1}}

	mustAdd := func(from, to graph.NodeID, geom orb.LineString) {
		if _, err := g.AddEdge(graph.Edge{From: from, To: to, Geometry: geom, Bundle: bundle}); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	mustAdd(west, hub, orb.LineString{{0, 0}, {10, 0}})
	mustAdd(hub, east, orb.LineString{{10, 0}, {20, 0}})

	return g
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.CellSize = 5
	opts.Origin = orb.Point{-5, -10}
	opts.Width, opts.Height = 8, 4
	opts.MaxDis = 3
	return opts
}

func TestPlaceStationsAssignsDistinctOpenCells(t *testing.T) {
	g := lineGraph(t)
	og, err := optgraph.Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	opts := testOptions()
	gg := gridgraph.NewGridGraph(gridgraph.NewOctilinear(opts.Width, opts.Height), opts.Costs, allCells(opts.Width, opts.Height))

	placement, err := PlaceStations(g, og, gg, opts)
	if err != nil {
		t.Fatalf("PlaceStations: %v", err)
	}
	if len(placement) != og.NodeCount() {
		t.Fatalf("expected %d placed nodes, got %d", og.NodeCount(), len(placement))
	}
	seen := make(map[gridgraph.VertexID]bool)
	for _, vid := range placement {
		if seen[vid] {
			t.Fatalf("vertex %d assigned to more than one node", vid)
		}
		seen[vid] = true
	}
}

func TestRouteEdgesWritesGeometryForEveryEdge(t *testing.T) {
	g := lineGraph(t)
	og, err := optgraph.Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	opts := testOptions()
	gg := gridgraph.NewGridGraph(gridgraph.NewOctilinear(opts.Width, opts.Height), opts.Costs, allCells(opts.Width, opts.Height))

	placement, err := PlaceStations(g, og, gg, opts)
	if err != nil {
		t.Fatalf("PlaceStations: %v", err)
	}
	if err := RouteEdges(g, og, gg, placement, opts); err != nil {
		t.Fatalf("RouteEdges: %v", err)
	}

	for _, e := range og.Edges() {
		for _, segID := range e.Segments {
			seg, ok := g.Edge(segID)
			if !ok {
				t.Fatalf("segment %d missing from line graph", segID)
			}
			if len(seg.Geometry) < 2 {
				t.Fatalf("segment %d has no routed geometry", segID)
			}
		}
	}
}

func TestSchematizeGrowsGridOnInfeasibleLayout(t *testing.T) {
	g := lineGraph(t)
	og, err := optgraph.Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	opts := testOptions()
	opts.Width, opts.Height = 1, 1 // too small to place all three stations
	opts.MaxDis = 0
	opts.GrowGridOnFailure = true
	opts.MaxGrowAttempts = 4

	res, err := Schematize(g, og, opts)
	if err != nil {
		t.Fatalf("Schematize: %v", err)
	}
	if res.Width <= 1 || res.Height <= 1 {
		t.Fatalf("expected the grid to have grown, got %dx%d", res.Width, res.Height)
	}
	if len(res.Placement) != og.NodeCount() {
		t.Fatalf("expected every node placed after growth, got %d", len(res.Placement))
	}
}

func TestSchematizeAbortsWithoutGrowGridOnFailure(t *testing.T) {
	g := lineGraph(t)
	og, err := optgraph.Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	opts := testOptions()
	opts.Width, opts.Height = 1, 1
	opts.MaxDis = 0
	opts.GrowGridOnFailure = false

	if _, err := Schematize(g, og, opts); err == nil {
		t.Fatal("expected a LayoutInfeasible error without grow-grid recovery")
	}
}

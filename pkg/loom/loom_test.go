package loom

import (
	"context"
	"testing"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
)

// wyeGraph builds a single hub with one incoming edge carrying two lines
// and two outgoing spokes, each carrying one of those lines onward. Each
// line continues onto its own spoke, so every destination group holds a
// single line and no incoming order can score a split.
func wyeGraph(t *testing.T) *graph.LineGraph {
	t.Helper()
	g := graph.New()
	red := g.AddLine(graph.Line{ID: "red", Label: "Red"})
	blue := g.AddLine(graph.Line{ID: "blue", Label: "Blue"})

	hub := g.AddNode(graph.Node{ExtID: "hub", Pos: orb.Point{0, 0}, Station: &graph.Station{ID: "sh", Name: "Hub"}})
	south := g.AddNode(graph.Node{ExtID: "south", Pos: orb.Point{0, -1}, Station: &graph.Station{ID: "ss", Name: "South"}})
	northRed := g.AddNode(graph.Node{ExtID: "nred", Pos: orb.Point{-1, 1}, Station: &graph.Station{ID: "snr", Name: "NorthRed"}})
	northBlue := g.AddNode(graph.Node{ExtID: "nblue", Pos: orb.Point{1, 1}, Station: &graph.Station{ID: "snb", Name: "NorthBlue"}})

	both := []graph.LineOccurrence{
		{Line: blue, Direction: graph.DirForward, Relatives: []graph.LineID{"blue"}, Order: -1},
		{Line: red, Direction: graph.DirForward, Relatives: []graph.LineID{"red"}, Order: -1},
	}
	redOnly := []graph.LineOccurrence{{Line: red, Direction: graph.DirForward, Relatives: []graph.LineID{"red"}, Order: -1}}
	blueOnly := []graph.LineOccurrence{{Line: blue, Direction: graph.DirForward, Relatives: []graph.LineID{"blue"}, Order: -1}}

	mustAdd := func(from, to graph.NodeID, geom orb.LineString, bundle []graph.LineOccurrence) {
		if _, err := g.AddEdge(graph.Edge{From: from, To: to, Geometry: geom, Bundle: bundle}); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	mustAdd(south, hub, orb.LineString{{0, -1}, {0, 0}}, both)
	mustAdd(hub, northRed, orb.LineString{{0, 0}, {-1, 1}}, redOnly)
	mustAdd(hub, northBlue, orb.LineString{{0, 0}, {1, 1}}, blueOnly)

	return g
}

func TestScorerReportsNoSplitForSingleLineGroups(t *testing.T) {
	g := wyeGraph(t)
	og, err := optgraph.Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}

	scorer := NewDefaultScorer()
	score := scorer.Score(og)
	if score.Split != 0 {
		t.Fatalf("a single-edge-per-line bundle should never score a split, got %+v", score)
	}
}

func TestHeuristicOrdererIsIdempotentOnTrivialGraph(t *testing.T) {
	g := wyeGraph(t)
	og, err := optgraph.Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}

	h := &Heuristic{Scorer: NewDefaultScorer(), Passes: 4}
	if err := h.OrderLines(g, og); err != nil {
		t.Fatalf("OrderLines: %v", err)
	}

	scorer := NewDefaultScorer()
	score := scorer.Score(og)
	if score.Same != 0 || score.Diff != 0 {
		t.Fatalf("a three-spoke graph with disjoint lines per edge should score zero, got %+v", score)
	}

	for _, e := range og.Edges() {
		for i, occ := range e.Bundle {
			if occ.Order != i {
				t.Fatalf("expected Order to be stamped to final slot index, got %d at slot %d", occ.Order, i)
			}
		}
	}
}

func TestExactOrdererRespectsDeadline(t *testing.T) {
	g := wyeGraph(t)
	og, err := optgraph.Contract(g)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}

	x := &Exact{Scorer: NewDefaultScorer(), Rounds: 1, Timeout: DefaultTimeoutFast}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeoutFast)
	defer cancel()
	if err := x.OrderLinesContext(ctx, g, og); err != nil {
		t.Fatalf("OrderLinesContext: %v", err)
	}
}

func TestForQualityReturnsDistinctStrategies(t *testing.T) {
	if _, ok := ForQuality(QualityFast).(*Heuristic); !ok {
		t.Fatal("QualityFast should select the Heuristic strategy")
	}
	if _, ok := ForQuality(QualityOptimal).(*Exact); !ok {
		t.Fatal("QualityOptimal should select the Exact strategy")
	}
}

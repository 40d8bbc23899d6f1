package graph

import (
	"testing"

	"github.com/paulmach/orb"
)

func twoNodeEdge(t *testing.T) (*LineGraph, NodeID, NodeID, EdgeID) {
	t.Helper()
	g := New()
	red := g.AddLine(Line{ID: "red", Label: "Red Line"})

	a := g.AddNode(Node{Pos: orb.Point{0, 0}, Station: &Station{ID: "a", Name: "Alpha"}})
	b := g.AddNode(Node{Pos: orb.Point{1, 0}, Station: &Station{ID: "b", Name: "Beta"}})

	eid, err := g.AddEdge(Edge{
		From:     a,
		To:       b,
		Geometry: orb.LineString{{0, 0}, {1, 0}},
		Bundle:   []LineOccurrence{{Line: red, Direction: DirBoth, Relatives: []LineID{"red"}, Order: -1}},
	})
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return g, a, b, eid
}

func TestAddEdgeRejectsUnknownLine(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Pos: orb.Point{0, 0}})
	b := g.AddNode(Node{Pos: orb.Point{1, 0}})

	_, err := g.AddEdge(Edge{
		From:     a,
		To:       b,
		Geometry: orb.LineString{{0, 0}, {1, 0}},
		Bundle:   []LineOccurrence{{Line: &Line{ID: "ghost"}}},
	})
	if err != ErrUnknownLine {
		t.Fatalf("got %v, want ErrUnknownLine", err)
	}
}

func TestAddEdgeRejectsDuplicateLine(t *testing.T) {
	g := New()
	red := g.AddLine(Line{ID: "red"})
	a := g.AddNode(Node{Pos: orb.Point{0, 0}})
	b := g.AddNode(Node{Pos: orb.Point{1, 0}})

	_, err := g.AddEdge(Edge{
		From:     a,
		To:       b,
		Geometry: orb.LineString{{0, 0}, {1, 0}},
		Bundle: []LineOccurrence{
			{Line: red},
			{Line: red},
		},
	})
	if err != ErrDuplicateLine {
		t.Fatalf("got %v, want ErrDuplicateLine", err)
	}
}

func TestAdjacencySymmetric(t *testing.T) {
	g, a, b, eid := twoNodeEdge(t)

	na, _ := g.Node(a)
	nb, _ := g.Node(b)
	if _, ok := na.adj[eid]; !ok {
		t.Fatal("edge missing from from-node adjacency")
	}
	if _, ok := nb.adj[eid]; !ok {
		t.Fatal("edge missing from to-node adjacency")
	}

	g.RemoveEdge(eid)
	if len(na.adj) != 0 || len(nb.adj) != 0 {
		t.Fatal("RemoveEdge did not detach both endpoints")
	}
}

func TestValidateDetectsGeometryMismatch(t *testing.T) {
	g, _, _, eid := twoNodeEdge(t)
	e, _ := g.Edge(eid)
	e.Geometry = orb.LineString{{5, 5}, {1, 0}}

	if err := g.Validate(DefaultGeometryTolerance); err == nil {
		t.Fatal("expected geometry mismatch error")
	}
}

func TestValidateAcceptsCleanGraph(t *testing.T) {
	g, _, _, _ := twoNodeEdge(t)
	if err := g.Validate(DefaultGeometryTolerance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSortedIDsAreDeterministic(t *testing.T) {
	g := New()
	for i := 0; i < 5; i++ {
		g.AddNode(Node{Pos: orb.Point{float64(i), 0}})
	}
	ids := g.SortedNodeIDs()
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("SortedNodeIDs not ascending at %d", i)
		}
	}
}

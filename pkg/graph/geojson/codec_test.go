package geojson

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
)

func sampleGraph() *graph.LineGraph {
	g := graph.New()
	red := g.AddLine(graph.Line{ID: "red", Label: "Red Line"})
	a := g.AddNode(graph.Node{ExtID: "a", Pos: orb.Point{0, 0}, Station: &graph.Station{ID: "sa", Name: "Alpha"}})
	b := g.AddNode(graph.Node{ExtID: "b", Pos: orb.Point{1, 0}, Station: &graph.Station{ID: "sb", Name: "Beta"}})
	g.AddEdge(graph.Edge{
		From:     a,
		To:       b,
		Geometry: orb.LineString{{0, 0}, {1, 0}},
		Bundle:   []graph.LineOccurrence{{Line: red, Direction: graph.DirForward, Relatives: []graph.LineID{"red"}, Order: -1}},
	})
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGraph()

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}

	g2, err := Load(&buf, graph.DefaultGeometryTolerance)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if g2.NodeCount() != g.NodeCount() || g2.EdgeCount() != g.EdgeCount() {
		t.Fatalf("round trip changed counts: nodes %d->%d, edges %d->%d",
			g.NodeCount(), g2.NodeCount(), g.EdgeCount(), g2.EdgeCount())
	}
	if len(g2.Lines()) != 1 {
		t.Fatalf("expected 1 line after round trip, got %d", len(g2.Lines()))
	}
}

func TestLoadRejectsDanglingReference(t *testing.T) {
	doc := `{"type":"FeatureCollection","lines":{},"features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"id":"a"}},
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,0]]},"properties":{"from":"a","to":"ghost","lines":[]}}
	]}`
	_, err := Load(strings.NewReader(doc), graph.DefaultGeometryTolerance)
	if err == nil {
		t.Fatal("expected dangling reference error")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader("{not json"), graph.DefaultGeometryTolerance)
	if err == nil {
		t.Fatal("expected malformed input error")
	}
}

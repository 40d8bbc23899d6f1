package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/cache"
	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/graph/geojson"
	"github.com/transitdraw/transitmap/pkg/loom"
	"github.com/transitdraw/transitmap/pkg/octi"
)

func sampleExchangeDocument(t *testing.T) []byte {
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

	var buf bytes.Buffer
	if err := geojson.Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func testPipelineOptions() Options {
	opts := Options{Quality: loom.QualityFast}
	schem := octi.DefaultOptions()
	schem.CellSize = 5
	schem.Origin = orb.Point{-5, -10}
	schem.Width, schem.Height = 8, 4
	schem.MaxDis = 3
	schem.GrowGridOnFailure = true
	schem.MaxGrowAttempts = 3
	opts.Schematize = schem
	return opts
}

func TestRunnerExecuteRunsAllFiveStages(t *testing.T) {
	doc := sampleExchangeDocument(t)
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(context.Background(), bytes.NewReader(doc), testPipelineOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Network == nil || result.Opt == nil || result.Layout == nil {
		t.Fatal("expected every pipeline stage to populate its result field")
	}
	if result.NetworkHash == "" {
		t.Fatal("expected a non-empty network hash")
	}
}

func TestRunnerExecuteFirstRunMissesParseCache(t *testing.T) {
	doc := sampleExchangeDocument(t)
	c := cache.NewNullCache()
	runner := NewRunner(c, nil, nil)

	opts := testPipelineOptions()
	first, err := runner.Execute(context.Background(), bytes.NewReader(doc), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.ParseHit {
		t.Fatal("first run should not hit the cache")
	}
}

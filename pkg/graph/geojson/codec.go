package geojson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	orbgeojson "github.com/paulmach/orb/geojson"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
)

// document is the wire format of §6: a FeatureCollection extended with a
// top-level `lines` property. orb/geojson.FeatureCollection has no room for
// extra top-level keys, so the collection envelope is handled here while
// individual features are still real *orbgeojson.Feature values.
type document struct {
	Type     string               `json:"type"`
	Lines    map[string]lineProps `json:"lines"`
	Features []*orbgeojson.Feature `json:"features"`
}

type lineProps struct {
	Label  string `json:"label"`
	Colour string `json:"colour,omitempty"`
}

type bundleEntry struct {
	ID        string   `json:"id"`
	Direction int      `json:"direction"`
	Order     *int     `json:"order,omitempty"`
	Relatives []string `json:"relatives,omitempty"`
}

type stationProps struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Load parses a GeoJSON exchange document into a LineGraph.
//
// Failure modes (§4.A): CodeMalformedInput for unparseable JSON,
// CodeDanglingReference for an edge referencing a missing node or line, and
// CodeGeometryMismatch for an edge whose geometry does not start/end within
// tol of its node positions. None are recoverable by the core.
func Load(r io.Reader, tol float64) (*graph.LineGraph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeMalformedInput, err, "read exchange document")
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeMalformedInput, err, "parse exchange document")
	}

	g := graph.New()
	for id, lp := range doc.Lines {
		g.AddLine(graph.Line{ID: graph.LineID(id), Label: lp.Label, Colour: lp.Colour})
	}

	nodeByExtID := make(map[string]graph.NodeID)
	type pendingEdge struct {
		feature *orbgeojson.Feature
		from    string
		to      string
		bundle  []bundleEntry
	}
	var pending []pendingEdge

	for _, f := range doc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Point:
			extID, _ := f.Properties["id"].(string)
			if extID == "" {
				return nil, pipelineerr.New(pipelineerr.CodeMalformedInput, "point feature missing id property")
			}
			n := graph.Node{ExtID: extID, Pos: geom}
			if raw, ok := f.Properties["station"]; ok {
				var sp stationProps
				if b, err := json.Marshal(raw); err == nil {
					_ = json.Unmarshal(b, &sp)
				}
				if sp.ID != "" {
					n.Station = &graph.Station{ID: sp.ID, Name: sp.Name}
				}
			}
			nodeByExtID[extID] = g.AddNode(n)

		case orb.LineString:
			from, _ := f.Properties["from"].(string)
			to, _ := f.Properties["to"].(string)
			if from == "" || to == "" {
				return nil, pipelineerr.New(pipelineerr.CodeMalformedInput, "linestring feature missing from/to properties")
			}
			var entries []bundleEntry
			if raw, ok := f.Properties["lines"]; ok {
				b, _ := json.Marshal(raw)
				if err := json.Unmarshal(b, &entries); err != nil {
					return nil, pipelineerr.Wrap(pipelineerr.CodeMalformedInput, err, "parse edge line bundle")
				}
			}
			pending = append(pending, pendingEdge{feature: f, from: from, to: to, bundle: entries})

		default:
			return nil, pipelineerr.New(pipelineerr.CodeMalformedInput, "unsupported geometry type %T", geom)
		}
	}

	for _, pe := range pending {
		fromID, ok := nodeByExtID[pe.from]
		if !ok {
			return nil, pipelineerr.New(pipelineerr.CodeDanglingReference, "edge references missing node %q", pe.from)
		}
		toID, ok := nodeByExtID[pe.to]
		if !ok {
			return nil, pipelineerr.New(pipelineerr.CodeDanglingReference, "edge references missing node %q", pe.to)
		}

		bundle := make([]graph.LineOccurrence, 0, len(pe.bundle))
		for _, be := range pe.bundle {
			ln, ok := g.Line(graph.LineID(be.ID))
			if !ok {
				return nil, pipelineerr.New(pipelineerr.CodeDanglingReference, "edge bundle references unknown line %q", be.ID)
			}
			order := -1
			if be.Order != nil {
				order = *be.Order
			}
			relatives := make([]graph.LineID, 0, len(be.Relatives))
			for _, r := range be.Relatives {
				relatives = append(relatives, graph.LineID(r))
			}
			if len(relatives) == 0 {
				relatives = []graph.LineID{ln.ID}
			}
			bundle = append(bundle, graph.LineOccurrence{
				Line:      ln,
				Direction: graph.Direction(be.Direction),
				Relatives: relatives,
				Order:     order,
			})
		}

		ls, ok := pe.feature.Geometry.(orb.LineString)
		if !ok {
			return nil, pipelineerr.New(pipelineerr.CodeMalformedInput, "edge feature geometry is not a LineString")
		}

		if _, err := g.AddEdge(graph.Edge{From: fromID, To: toID, Geometry: ls, Bundle: bundle}); err != nil {
			return nil, pipelineerr.Wrap(pipelineerr.CodeDanglingReference, err, "add edge %s->%s", pe.from, pe.to)
		}
	}

	if err := g.Validate(tol); err != nil {
		return nil, err
	}
	return g, nil
}

// Write serializes a LineGraph to the GeoJSON exchange format of §6.
//
// Nodes and edges are emitted in ascending ID order so that Write is
// deterministic and round-trips are byte-for-byte stable given an
// unchanged graph.
func Write(w io.Writer, g *graph.LineGraph) error {
	doc := document{
		Type:  "FeatureCollection",
		Lines: make(map[string]lineProps),
	}
	for _, l := range g.Lines() {
		doc.Lines[string(l.ID)] = lineProps{Label: l.Label, Colour: l.Colour}
	}

	extID := make(map[graph.NodeID]string, g.NodeCount())
	for _, id := range g.SortedNodeIDs() {
		n, _ := g.Node(id)
		ext := n.ExtID
		if ext == "" {
			ext = fmt.Sprintf("n%d", id)
		}
		extID[id] = ext

		f := orbgeojson.NewFeature(n.Pos)
		f.Properties["id"] = ext
		if n.IsStation() {
			f.Properties["station"] = stationProps{ID: n.Station.ID, Name: n.Station.Name}
		}
		doc.Features = append(doc.Features, f)
	}

	for _, id := range g.SortedEdgeIDs() {
		e, _ := g.Edge(id)
		f := orbgeojson.NewFeature(e.Geometry)
		f.Properties["from"] = extID[e.From]
		f.Properties["to"] = extID[e.To]

		entries := make([]bundleEntry, 0, len(e.Bundle))
		for _, occ := range e.Bundle {
			be := bundleEntry{ID: string(occ.Line.ID), Direction: int(occ.Direction)}
			if occ.Order >= 0 {
				order := occ.Order
				be.Order = &order
			}
			for _, r := range occ.Relatives {
				be.Relatives = append(be.Relatives, string(r))
			}
			entries = append(entries, be)
		}
		f.Properties["lines"] = entries
		doc.Features = append(doc.Features, f)
	}

	enc := json.NewEncoder(w)
	return enc.Encode(doc)
}

package octi

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/transitdraw/transitmap/pkg/optgraph"
)

// ToDOT renders a Result as a Graphviz DOT preview of the grid layout:
// every placed station at its assigned cell, and every routed edge as a
// polyline through the grid vertices it consumed. This is the
// --grid-preview debug export.
func (r *Result) ToDOT(og *optgraph.OptGraph) string {
	var buf bytes.Buffer
	buf.WriteString("graph GridPreview {\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=10, shape=point];\n")
	buf.WriteString("  splines=false;\n\n")

	for id, vid := range r.Placement {
		cell, _, _ := r.Grid.Vertex(vid)
		fmt.Fprintf(&buf, "  s%d [pos=\"%d,%d!\", shape=circle, width=0.2, label=\"%d\"];\n", id, cell.X, cell.Y, id)
	}
	buf.WriteString("\n")

	for _, e := range og.Edges() {
		from, ok := r.Placement[e.From]
		if !ok {
			continue
		}
		to, ok := r.Placement[e.To]
		if !ok {
			continue
		}
		fromCell, _, _ := r.Grid.Vertex(from)
		toCell, _, _ := r.Grid.Vertex(to)
		fmt.Fprintf(&buf, "  s%d -- s%d [label=\"%d lines\", pos=\"%d,%d %d,%d\"];\n",
			e.From, e.To, len(e.Bundle), fromCell.X, fromCell.Y, toCell.X, toCell.Y)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a Result's grid preview as an SVG image via Graphviz.
func (r *Result) RenderSVG(og *optgraph.OptGraph) ([]byte, error) {
	dot := r.ToDOT(og)

	gv, err := graphviz.New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var out bytes.Buffer
	if err := gv.Render(context.Background(), g, graphviz.SVG, &out); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return out.Bytes(), nil
}

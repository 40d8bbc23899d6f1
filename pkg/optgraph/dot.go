package optgraph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the optimization graph,
// one node per OptNode and one edge per OptEdge, labelled with the number
// of contracted segments and lines it carries. Useful for --grid-preview
// style debugging of the contraction step.
func (og *OptGraph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("graph OptGraph {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, shape=circle, style=filled, fillcolor=white];\n\n")

	for _, id := range og.SortedNodeIDs() {
		n := og.nodes[id]
		fmt.Fprintf(&buf, "  n%d [label=\"%d\"];\n", n.ID, n.Source)
	}
	buf.WriteString("\n")
	for _, id := range og.SortedEdgeIDs() {
		e := og.edges[id]
		fmt.Fprintf(&buf, "  n%d -- n%d [label=\"%d segs, %d lines\"];\n",
			e.From, e.To, len(e.Segments), len(e.Bundle))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders the optimization graph as an SVG image via Graphviz.
func (og *OptGraph) RenderSVG() ([]byte, error) {
	dot := og.ToDOT()

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

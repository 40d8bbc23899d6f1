// Package geojson implements the GeoJSON exchange codec of §4.A and §6: a
// FeatureCollection whose Point features are line-graph Nodes and whose
// LineString features are Edges, plus a top-level `lines` property mapping
// line id to {label, colour}.
//
// Load and Write round-trip a [github.com/transitdraw/transitmap/pkg/graph.LineGraph]
// so that Load(Write(g)) is semantically equal to g (§8).
package geojson

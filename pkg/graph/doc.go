// Package graph defines the line graph model shared by every pipeline stage:
// Line, Station, Node, Edge and LineOccurrence, plus the LineGraph container
// that owns them.
//
// Entities are arena-allocated and addressed by stable integer indices
// (NodeID, EdgeID); adjacency sets hold indices rather than pointers, so the
// graph can be freely copied, cached and round-tripped through the exchange
// codec in [github.com/transitdraw/transitmap/pkg/graph/geojson] without
// reconstructing pointer graphs.
package graph

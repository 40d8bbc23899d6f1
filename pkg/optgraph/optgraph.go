package optgraph

import (
	"slices"

	"github.com/transitdraw/transitmap/pkg/graph"
)

// OptGraph is the arena-indexed container of OptNodes and OptEdges produced
// by Contract.
type OptGraph struct {
	nodes map[OptNodeID]*OptNode
	edges map[OptEdgeID]*OptEdge

	bySource map[graph.NodeID]OptNodeID
	adj      map[OptNodeID][]OptEdgeID

	nextNodeID OptNodeID
	nextEdgeID OptEdgeID
}

func newOptGraph() *OptGraph {
	return &OptGraph{
		nodes:    make(map[OptNodeID]*OptNode),
		edges:    make(map[OptEdgeID]*OptEdge),
		bySource: make(map[graph.NodeID]OptNodeID),
		adj:      make(map[OptNodeID][]OptEdgeID),
	}
}

func (og *OptGraph) addNode(source graph.NodeID) OptNodeID {
	id := og.nextNodeID
	og.nextNodeID++
	og.nodes[id] = &OptNode{ID: id, Source: source}
	og.bySource[source] = id
	return id
}

func (og *OptGraph) addEdge(from, to OptNodeID, segs []graph.EdgeID, reversed []bool, bundle []graph.LineOccurrence) OptEdgeID {
	id := og.nextEdgeID
	og.nextEdgeID++
	og.edges[id] = &OptEdge{ID: id, From: from, To: to, Segments: segs, Reversed: reversed, Bundle: bundle}
	og.adj[from] = append(og.adj[from], id)
	og.adj[to] = append(og.adj[to], id)
	return id
}

// IncidentEdges returns the OptEdgeIDs touching the given OptNode, in
// unspecified order.
func (og *OptGraph) IncidentEdges(id OptNodeID) []OptEdgeID {
	return og.adj[id]
}

// Node returns the OptNode with the given ID.
func (og *OptGraph) Node(id OptNodeID) (*OptNode, bool) {
	n, ok := og.nodes[id]
	return n, ok
}

// NodeBySource returns the OptNode contracted from the given source node ID.
func (og *OptGraph) NodeBySource(source graph.NodeID) (*OptNode, bool) {
	id, ok := og.bySource[source]
	if !ok {
		return nil, false
	}
	return og.nodes[id], true
}

// Edge returns the OptEdge with the given ID.
func (og *OptGraph) Edge(id OptEdgeID) (*OptEdge, bool) {
	e, ok := og.edges[id]
	return e, ok
}

// Nodes returns every OptNode in unspecified order.
func (og *OptGraph) Nodes() []*OptNode {
	out := make([]*OptNode, 0, len(og.nodes))
	for _, n := range og.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns every OptEdge in unspecified order.
func (og *OptGraph) Edges() []*OptEdge {
	out := make([]*OptEdge, 0, len(og.edges))
	for _, e := range og.edges {
		out = append(out, e)
	}
	return out
}

// NodeCount returns the number of OptNodes.
func (og *OptGraph) NodeCount() int { return len(og.nodes) }

// EdgeCount returns the number of OptEdges.
func (og *OptGraph) EdgeCount() int { return len(og.edges) }

// SortedNodeIDs returns every OptNodeID in ascending order, for
// deterministic iteration by the ordering optimizer (§4.D).
func (og *OptGraph) SortedNodeIDs() []OptNodeID {
	ids := make([]OptNodeID, 0, len(og.nodes))
	for id := range og.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SortedEdgeIDs returns every OptEdgeID in ascending order.
func (og *OptGraph) SortedEdgeIDs() []OptEdgeID {
	ids := make([]OptEdgeID, 0, len(og.edges))
	for id := range og.edges {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// WriteBundle replaces an OptEdge's bundle and pushes the same bundle (with
// direction flipped where Reversed[i] is set) onto every underlying segment
// of the source line graph, so D's ordering decisions survive decompression
// back to the original line graph.
func WriteBundle(g *graph.LineGraph, og *OptGraph, id OptEdgeID, bundle []graph.LineOccurrence) error {
	e, ok := og.Edge(id)
	if !ok {
		return graph.ErrUnknownEdge
	}
	e.Bundle = bundle
	for i, segID := range e.Segments {
		segBundle := bundle
		if e.Reversed[i] {
			segBundle = flipDirections(bundle)
		}
		if err := g.ReplaceBundle(segID, segBundle); err != nil {
			return err
		}
	}
	return nil
}

func flipDirections(bundle []graph.LineOccurrence) []graph.LineOccurrence {
	out := make([]graph.LineOccurrence, len(bundle))
	for i, occ := range bundle {
		flipped := occ
		switch occ.Direction {
		case graph.DirForward:
			flipped.Direction = graph.DirBackward
		case graph.DirBackward:
			flipped.Direction = graph.DirForward
		}
		out[i] = flipped
	}
	return out
}

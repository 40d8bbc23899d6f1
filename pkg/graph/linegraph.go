package graph

import (
	"errors"
	"slices"
)

// Sentinel errors for LineGraph mutation.
var (
	// ErrUnknownNode is returned when an edge references a node ID that was
	// never added to the graph.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrUnknownEdge is returned when a lookup references an edge ID that
	// does not exist.
	ErrUnknownEdge = errors.New("graph: unknown edge")

	// ErrUnknownLine is returned when a bundle occurrence references a line
	// ID not present in the graph's line table.
	ErrUnknownLine = errors.New("graph: unknown line")

	// ErrDuplicateLine is returned when an edge's bundle contains the same
	// line ID twice.
	ErrDuplicateLine = errors.New("graph: duplicate line in bundle")
)

// LineGraph is the in-memory planar line graph shared by every pipeline
// stage. Nodes and edges are arena-allocated and addressed by integer ID;
// the zero value is not usable, use New.
//
// LineGraph is not safe for concurrent mutation; callers that process
// connected components in parallel (§5) must partition the graph first.
type LineGraph struct {
	nodes map[NodeID]*Node
	edges map[EdgeID]*Edge
	lines map[LineID]*Line

	nextNodeID NodeID
	nextEdgeID EdgeID
}

// New creates an empty LineGraph.
func New() *LineGraph {
	return &LineGraph{
		nodes: make(map[NodeID]*Node),
		edges: make(map[EdgeID]*Edge),
		lines: make(map[LineID]*Line),
	}
}

// AddLine registers a line flyweight, overwriting any previous line with the
// same ID. Lines should be added before edges whose bundles reference them.
func (g *LineGraph) AddLine(l Line) *Line {
	ln := &l
	g.lines[l.ID] = ln
	return ln
}

// Line returns the line with the given ID, or nil and false if unregistered.
func (g *LineGraph) Line(id LineID) (*Line, bool) {
	l, ok := g.lines[id]
	return l, ok
}

// Lines returns every registered line in unspecified order.
func (g *LineGraph) Lines() []*Line {
	out := make([]*Line, 0, len(g.lines))
	for _, l := range g.lines {
		out = append(out, l)
	}
	return out
}

// AddNode allocates a new node at the given position and returns its ID.
// The graph stores its own copy of n.
func (g *LineGraph) AddNode(n Node) NodeID {
	id := g.nextNodeID
	g.nextNodeID++
	n.ID = id
	n.adj = make(map[EdgeID]struct{})
	g.nodes[id] = &n
	return id
}

// Node returns the node with the given ID, or nil and false if it does not
// exist (or was removed).
func (g *LineGraph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in the graph in unspecified order.
func (g *LineGraph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// RemoveNode deletes a node. It panics if the node still has incident edges;
// callers must remove those edges first so adjacency symmetry is never
// silently broken.
func (g *LineGraph) RemoveNode(id NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	if len(n.adj) != 0 {
		panic("graph: RemoveNode on node with incident edges")
	}
	delete(g.nodes, id)
}

// AddEdge allocates a new edge between two existing nodes and returns its
// ID. Every line referenced by the bundle must already be registered via
// AddLine, and no line ID may appear twice in the bundle.
func (g *LineGraph) AddEdge(e Edge) (EdgeID, error) {
	from, ok := g.nodes[e.From]
	if !ok {
		return 0, ErrUnknownNode
	}
	to, ok := g.nodes[e.To]
	if !ok {
		return 0, ErrUnknownNode
	}
	seen := make(map[LineID]struct{}, len(e.Bundle))
	for _, occ := range e.Bundle {
		if occ.Line == nil {
			return 0, ErrUnknownLine
		}
		if _, ok := g.lines[occ.Line.ID]; !ok {
			return 0, ErrUnknownLine
		}
		if _, dup := seen[occ.Line.ID]; dup {
			return 0, ErrDuplicateLine
		}
		seen[occ.Line.ID] = struct{}{}
	}

	id := g.nextEdgeID
	g.nextEdgeID++
	e.ID = id
	g.edges[id] = &e
	from.adj[id] = struct{}{}
	to.adj[id] = struct{}{}
	return id, nil
}

// Edge returns the edge with the given ID, or nil and false if it does not
// exist.
func (g *LineGraph) Edge(id EdgeID) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Edges returns every edge in the graph in unspecified order.
func (g *LineGraph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// RemoveEdge deletes an edge and detaches it from both endpoints' adjacency
// sets. It is a no-op if the edge does not exist.
func (g *LineGraph) RemoveEdge(id EdgeID) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	if from, ok := g.nodes[e.From]; ok {
		delete(from.adj, id)
	}
	if to, ok := g.nodes[e.To]; ok {
		delete(to.adj, id)
	}
	delete(g.edges, id)
}

// ReplaceBundle overwrites an edge's bundle in place, preserving the edge's
// ID, endpoints and geometry. It is used by the ordering optimizer (D) to
// write back per-edge LineOrders without reallocating the edge.
func (g *LineGraph) ReplaceBundle(id EdgeID, bundle []LineOccurrence) error {
	e, ok := g.edges[id]
	if !ok {
		return ErrUnknownEdge
	}
	e.Bundle = bundle
	return nil
}

// NodeCount returns the number of nodes currently in the graph.
func (g *LineGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges currently in the graph.
func (g *LineGraph) EdgeCount() int { return len(g.edges) }

// Neighbours returns the IDs of edges incident to n, or nil if n does not
// exist.
func (g *LineGraph) Neighbours(n NodeID) []EdgeID {
	node, ok := g.nodes[n]
	if !ok {
		return nil
	}
	return node.Incident()
}

// SortedNodeIDs returns every node ID in ascending order. Deterministic
// iteration is required by every stage that must tie-break by id (§4.B,
// §4.D).
func (g *LineGraph) SortedNodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SortedEdgeIDs returns every edge ID in ascending order.
func (g *LineGraph) SortedEdgeIDs() []EdgeID {
	ids := make([]EdgeID, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

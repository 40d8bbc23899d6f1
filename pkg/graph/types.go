package graph

import "github.com/paulmach/orb"

// NodeID addresses a Node within a LineGraph's arena. IDs start at 0, so
// the zero value is the first node's ID.
type NodeID int

// EdgeID addresses an Edge within a LineGraph's arena.
type EdgeID int

// LineID is the stable external identifier of a Line. Lines are flyweights:
// a LineGraph holds at most one Line per LineID and every LineOccurrence
// references it by ID.
type LineID string

// Direction records how a LineOccurrence traverses its Edge relative to the
// edge's From→To orientation. The numeric values match the `direction`
// property of the exchange format (§6).
type Direction int

const (
	// DirBoth means the line runs in both directions along the edge.
	DirBoth Direction = 0
	// DirForward means the line runs from the edge's From node to its To node.
	DirForward Direction = 1
	// DirBackward means the line runs from the edge's To node to its From node.
	DirBackward Direction = 2
)

// Line is a transit line (route). Lines are immutable after load and shared
// by reference across every edge whose bundle includes them.
type Line struct {
	ID     LineID
	Label  string
	Colour string // optional, assigned externally; never computed by this module
}

// Station is a geographic stop or station cluster. A Station exists in a
// LineGraph iff at least one Node is bound to it.
type Station struct {
	ID   string
	Name string
}

// Node is a vertex of the line graph: a point with an optional Station
// binding. Non-station nodes are geometry-only waypoints (e.g. bends,
// degree-2 splits introduced by topology cleanup).
type Node struct {
	ID      NodeID
	ExtID   string // identifier carried over the exchange format, if any
	Pos     orb.Point
	Station *Station // nil if this node is not station-bound

	adj map[EdgeID]struct{} // incident edges, keyed by EdgeID for O(1) membership
}

// IsStation reports whether this node is bound to a Station.
func (n *Node) IsStation() bool { return n.Station != nil }

// Degree returns the number of edges incident to this node.
func (n *Node) Degree() int { return len(n.adj) }

// Incident returns the IDs of edges incident to this node in unspecified
// order. The returned slice is a fresh copy; callers may keep and sort it.
func (n *Node) Incident() []EdgeID {
	ids := make([]EdgeID, 0, len(n.adj))
	for id := range n.adj {
		ids = append(ids, id)
	}
	return ids
}

// LineOccurrence is one appearance of a Line on an Edge.
type LineOccurrence struct {
	Line      *Line
	Direction Direction

	// Relatives is the set of line IDs this occurrence represents after
	// topology merging. It is a singleton {Line.ID} until B collapses
	// near-duplicate edges that each carried a (different) copy of the line.
	Relatives []LineID

	// Order is this occurrence's position in the edge's bundle, written by
	// D. It is -1 until an ordering optimizer has run.
	Order int
}

// Edge is an undirected connection between two nodes carrying an ordered
// line bundle.
type Edge struct {
	ID   EdgeID
	From NodeID
	To   NodeID

	// Geometry is the polyline from the From node's position to the To
	// node's position. Its first and last points must lie within tolerance
	// of the endpoint node positions (see Validate).
	Geometry orb.LineString

	// Bundle is the edge's ordered line occurrences. No two occurrences may
	// share the same Line ID.
	Bundle []LineOccurrence
}

// LineAt returns the occurrence for the given line ID and true, or the zero
// value and false if the line does not appear on this edge.
func (e *Edge) LineAt(id LineID) (LineOccurrence, bool) {
	for _, occ := range e.Bundle {
		if occ.Line.ID == id {
			return occ, true
		}
	}
	return LineOccurrence{}, false
}

// Other returns the endpoint of e that is not n, or -1 if n is not an
// endpoint of e.
func (e *Edge) Other(n NodeID) NodeID {
	switch n {
	case e.From:
		return e.To
	case e.To:
		return e.From
	default:
		return -1
	}
}

package gridgraph

// VertexID addresses a grid vertex: either a centre or one of its eight
// ports, all drawn from a single arena so routing code need not
// distinguish them.
type VertexID int

// EdgeID addresses a directed grid edge.
type EdgeID int

type vertexKind int

const (
	kindCentre vertexKind = iota
	kindPort
)

type vertex struct {
	ID     VertexID
	Cell   CellCoord
	Port   PortDir // meaningful only when Kind == kindPort
	Kind   vertexKind
	Closed bool

	// Occupant, set once a station is placed here, blocks this centre
	// from being chosen for any other station.
	Occupant string
}

// EdgeKind distinguishes the three edge shapes the spec's grid
// construction lays down.
type EdgeKind int

const (
	EdgeSink EdgeKind = iota
	EdgeTraversal
	EdgeBend
)

type edge struct {
	ID     EdgeID
	From   VertexID
	To     VertexID
	Cost   float64
	Closed bool
	Kind   EdgeKind
}

// CostModel derives traversal and bend costs from direction/angle, kept
// separate from Topology because the spec's neighbour/port-count/
// heuristic capability set says nothing about cost — only Neighbour's
// direction and the entry/exit port pair determine it.
type CostModel struct {
	Dir  DirectionCost
	Bend BendCost
}

// DefaultCostModel pairs DefaultDirectionCost with DefaultBendCost.
var DefaultCostModel = CostModel{Dir: DefaultDirectionCost, Bend: DefaultBendCost}

// Traversal returns the base cost of a traversal edge leaving a centre
// along direction d.
func (c CostModel) Traversal(d PortDir) float64 { return c.Dir.For(d) }

// BendBetween returns the cost of turning, at a centre, from having
// entered via port `entry` to leaving via port `exit`.
func (c CostModel) BendBetween(entry, exit PortDir) float64 {
	return c.Bend.ForSteps(stepsBetween(entry.Opposite(), exit))
}

// GridGraph is the routing lattice: a centre vertex and eight port
// vertices per cell, sink edges between them, bend edges among a
// centre's own ports, and traversal edges between matching ports of
// 8-adjacent cells. Built once by NewGridGraph and then mutated in
// place (Close*) as pkg/octi commits routed edges.
type GridGraph struct {
	topo  Topology
	costs CostModel

	vertices []vertex
	edges    []edge
	adj      map[VertexID][]EdgeID

	centreOf map[CellCoord]VertexID
	portOf   map[CellCoord][numPorts]VertexID
}

// NewGridGraph lays out a full grid over every cell in cells using topo
// for adjacency and costs for edge weights.
func NewGridGraph(topo Topology, costs CostModel, cells []CellCoord) *GridGraph {
	gg := &GridGraph{
		topo:     topo,
		costs:    costs,
		adj:      make(map[VertexID][]EdgeID),
		centreOf: make(map[CellCoord]VertexID, len(cells)),
		portOf:   make(map[CellCoord][numPorts]VertexID, len(cells)),
	}

	for _, c := range cells {
		gg.addCentreAndPorts(c)
	}
	for _, c := range cells {
		gg.addSinkAndBendEdges(c)
		gg.addTraversalEdges(c)
	}
	return gg
}

func (gg *GridGraph) addVertex(v vertex) VertexID {
	v.ID = VertexID(len(gg.vertices))
	gg.vertices = append(gg.vertices, v)
	return v.ID
}

func (gg *GridGraph) addCentreAndPorts(c CellCoord) {
	centre := gg.addVertex(vertex{Cell: c, Kind: kindCentre})
	gg.centreOf[c] = centre

	var ports [numPorts]VertexID
	for d := PortDir(0); int(d) < numPorts; d++ {
		ports[d] = gg.addVertex(vertex{Cell: c, Port: d, Kind: kindPort})
	}
	gg.portOf[c] = ports
}

func (gg *GridGraph) addEdge(from, to VertexID, cost float64, kind EdgeKind) EdgeID {
	id := EdgeID(len(gg.edges))
	gg.edges = append(gg.edges, edge{ID: id, From: from, To: to, Cost: cost, Kind: kind})
	gg.adj[from] = append(gg.adj[from], id)
	return id
}

func (gg *GridGraph) addSinkAndBendEdges(c CellCoord) {
	centre := gg.centreOf[c]
	ports := gg.portOf[c]

	for d := PortDir(0); int(d) < numPorts; d++ {
		gg.addEdge(centre, ports[d], 0, EdgeSink)
		gg.addEdge(ports[d], centre, 0, EdgeSink)
	}

	for i := PortDir(0); int(i) < numPorts; i++ {
		for j := PortDir(0); int(j) < numPorts; j++ {
			if i == j {
				continue
			}
			steps := stepsBetween(i.Opposite(), j)
			if steps >= 4 {
				continue // a reversal, never a valid bend
			}
			gg.addEdge(ports[i], ports[j], gg.costs.BendBetween(i, j), EdgeBend)
		}
	}
}

func (gg *GridGraph) addTraversalEdges(c CellCoord) {
	ports := gg.portOf[c]
	for d := PortDir(0); int(d) < numPorts; d++ {
		next, arrival, ok := gg.topo.Neighbour(c, d)
		if !ok {
			continue
		}
		neighbourPorts, ok := gg.portOf[next]
		if !ok {
			continue
		}
		gg.addEdge(ports[d], neighbourPorts[arrival], gg.costs.Traversal(d), EdgeTraversal)
	}
}

// CentreID returns the centre vertex of cell c.
func (gg *GridGraph) CentreID(c CellCoord) (VertexID, bool) {
	id, ok := gg.centreOf[c]
	return id, ok
}

// PortID returns the port vertex of cell c in direction d.
func (gg *GridGraph) PortID(c CellCoord, d PortDir) (VertexID, bool) {
	ports, ok := gg.portOf[c]
	if !ok {
		return 0, false
	}
	return ports[d], true
}

// Vertex returns the cell/port/kind of a vertex.
func (gg *GridGraph) Vertex(id VertexID) (cell CellCoord, port PortDir, isCentre bool) {
	v := gg.vertices[id]
	return v.Cell, v.Port, v.Kind == kindCentre
}

// Edges returns the outgoing edges of a vertex.
func (gg *GridGraph) Edges(id VertexID) []EdgeID { return gg.adj[id] }

// EdgeEndpoints returns an edge's from/to vertices, cost, and whether it
// is currently closed (cost effectively +Inf).
func (gg *GridGraph) EdgeEndpoints(id EdgeID) (from, to VertexID, cost float64, closed bool) {
	e := gg.edges[id]
	return e.From, e.To, e.Cost, e.Closed
}

// IsVertexClosed reports whether a vertex has been closed (occupied by
// a station endpoint or otherwise excluded from future routing).
func (gg *GridGraph) IsVertexClosed(id VertexID) bool { return gg.vertices[id].Closed }

// CloseVertex marks a vertex unavailable for future placement/routing.
func (gg *GridGraph) CloseVertex(id VertexID) { gg.vertices[id].Closed = true }

// Occupant returns the station occupying a centre vertex, if any.
func (gg *GridGraph) Occupant(id VertexID) (string, bool) {
	v := gg.vertices[id]
	if v.Occupant == "" {
		return "", false
	}
	return v.Occupant, true
}

// Occupy records that a station now owns centre vertex id and closes
// it for future placement.
func (gg *GridGraph) Occupy(id VertexID, station string) {
	gg.vertices[id].Occupant = station
	gg.vertices[id].Closed = true
}

// CloseEdge marks an edge unavailable (cost +Inf) for future routing,
// without discarding its original cost.
func (gg *GridGraph) CloseEdge(id EdgeID) { gg.edges[id].Closed = true }

// ReopenEdge clears a previously closed edge's closed flag, used to
// undo a failed route's temporary commitments.
func (gg *GridGraph) ReopenEdge(id EdgeID) { gg.edges[id].Closed = false }

// ReopenVertex clears a previously closed vertex's closed flag.
func (gg *GridGraph) ReopenVertex(id VertexID) { gg.vertices[id].Closed = false }

// EdgeKind returns the shape (sink/traversal/bend) of an edge.
func (gg *GridGraph) EdgeKind(id EdgeID) EdgeKind { return gg.edges[id].Kind }

// PortOf returns the port direction of a port vertex, or ok=false if id
// addresses a centre vertex.
func (gg *GridGraph) PortOf(id VertexID) (PortDir, bool) {
	v := gg.vertices[id]
	if v.Kind != kindPort {
		return 0, false
	}
	return v.Port, true
}

// Topology returns the Topology this grid was built over.
func (gg *GridGraph) Topology() Topology { return gg.topo }

// VertexCount returns the total number of vertices (centres + ports).
func (gg *GridGraph) VertexCount() int { return len(gg.vertices) }

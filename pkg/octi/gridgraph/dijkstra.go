package gridgraph

import "container/heap"

// PathResult is a routed path through a GridGraph: the vertex sequence
// (for reading off final positions) and the edge sequence (for closing
// them once the route is committed).
type PathResult struct {
	Vertices []VertexID
	Edges    []EdgeID
	Cost     float64
}

// ExtraCost lets a caller layer per-route penalties (spacing, topology,
// geographic deviation) onto a grid edge's static cost without mutating
// the shared GridGraph. Returning a cost >= mathInf makes the edge
// impassable for this route only.
type ExtraCost func(id EdgeID) float64

// ShortestPath runs an A* search from `from` to `to`, using the grid's
// Topology.Heuristic as the admissible lower bound and skipping any
// closed vertex/edge. It follows the same lazy-decrease-key pattern as
// a textbook binary-heap Dijkstra: stale heap entries are pushed over
// rather than updated in place, and are discarded when popped if the
// vertex is already finalized.
func (gg *GridGraph) ShortestPath(from, to VertexID, extra ExtraCost) (PathResult, bool) {
	if extra == nil {
		extra = func(EdgeID) float64 { return 0 }
	}

	dist := make(map[VertexID]float64)
	prevEdge := make(map[VertexID]EdgeID)
	prevVertex := make(map[VertexID]VertexID)
	visited := make(map[VertexID]bool)

	destCell, _, _ := gg.Vertex(to)

	pq := make(vertexPQ, 0, 16)
	heap.Init(&pq)
	dist[from] = 0
	heap.Push(&pq, &pqItem{vertex: from, dist: 0, priority: gg.heuristicFrom(from, destCell)})

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*pqItem)
		u := item.vertex
		if visited[u] {
			continue
		}
		if gg.IsVertexClosed(u) && u != from && u != to {
			continue
		}
		visited[u] = true
		if u == to {
			break
		}

		for _, eid := range gg.Edges(u) {
			e := gg.edges[eid]
			if e.Closed {
				continue
			}
			v := e.To
			if visited[v] {
				continue
			}
			if gg.IsVertexClosed(v) && v != to {
				continue
			}
			cost := e.Cost + extra(eid)
			if cost >= mathInf {
				continue
			}
			nd := dist[u] + cost
			if existing, ok := dist[v]; ok && nd >= existing {
				continue
			}
			dist[v] = nd
			prevEdge[v] = eid
			prevVertex[v] = u
			cell, _, _ := gg.Vertex(v)
			heap.Push(&pq, &pqItem{vertex: v, dist: nd, priority: nd + gg.heuristicFrom2(cell, destCell)})
		}
	}

	finalDist, ok := dist[to]
	if !ok {
		return PathResult{}, false
	}

	var vertices []VertexID
	var edges []EdgeID
	cur := to
	for cur != from {
		vertices = append([]VertexID{cur}, vertices...)
		eid, ok := prevEdge[cur]
		if !ok {
			return PathResult{}, false
		}
		edges = append([]EdgeID{eid}, edges...)
		cur = prevVertex[cur]
	}
	vertices = append([]VertexID{from}, vertices...)

	return PathResult{Vertices: vertices, Edges: edges, Cost: finalDist}, true
}

func (gg *GridGraph) heuristicFrom(id VertexID, dest CellCoord) float64 {
	cell, _, _ := gg.Vertex(id)
	return gg.topo.Heuristic(cell, dest)
}

func (gg *GridGraph) heuristicFrom2(cell, dest CellCoord) float64 {
	return gg.topo.Heuristic(cell, dest)
}

type pqItem struct {
	vertex   VertexID
	dist     float64
	priority float64
}

// vertexPQ is a min-heap of *pqItem ordered by priority (dist + A*
// heuristic), the same lazy-decrease-key shape used throughout this
// pack's other Dijkstra implementations: stale entries are left in
// place and filtered out on pop via the `visited` set.
type vertexPQ []*pqItem

func (pq vertexPQ) Len() int            { return len(pq) }
func (pq vertexPQ) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq vertexPQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *vertexPQ) Push(x interface{}) { *pq = append(*pq, x.(*pqItem)) }
func (pq *vertexPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

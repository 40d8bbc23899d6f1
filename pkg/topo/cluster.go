package topo

import (
	"slices"

	"github.com/transitdraw/transitmap/pkg/graph"
)

// unionFind is a minimal disjoint-set structure over a fixed slice of
// graph.NodeID, used to group nodes for clustering.
type unionFind struct {
	parent map[graph.NodeID]graph.NodeID
}

func newUnionFind(ids []graph.NodeID) *unionFind {
	uf := &unionFind{parent: make(map[graph.NodeID]graph.NodeID, len(ids))}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(x graph.NodeID) graph.NodeID {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b graph.NodeID) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		uf.parent[rb] = ra
	} else {
		uf.parent[ra] = rb
	}
}

// repointEdge rewrites an edge's endpoint from oldNode to newNode,
// preserving geometry and bundle. The graph API addresses edges by value,
// so this is done by remove-then-readd rather than in-place mutation.
func repointEdge(g *graph.LineGraph, id graph.EdgeID, oldNode, newNode graph.NodeID) {
	e, ok := g.Edge(id)
	if !ok {
		return
	}
	from, to := e.From, e.To
	if from == oldNode {
		from = newNode
	}
	if to == oldNode {
		to = newNode
	}
	geom, bundle := e.Geometry, e.Bundle
	g.RemoveEdge(id)
	if from == to {
		return
	}
	g.AddEdge(graph.Edge{From: from, To: to, Geometry: geom, Bundle: bundle})
}

// mergeNodeInto redirects every edge incident to remove onto keep, carries
// over remove's station label if keep has none, then deletes remove.
func mergeNodeInto(g *graph.LineGraph, keep, remove graph.NodeID) {
	if keep == remove {
		return
	}
	removeNode, ok := g.Node(remove)
	if !ok {
		return
	}
	keepNode, _ := g.Node(keep)
	if keepNode != nil && keepNode.Station == nil && removeNode.Station != nil {
		keepNode.Station = removeNode.Station
	}

	incident := append([]graph.EdgeID{}, g.Neighbours(remove)...)
	for _, id := range incident {
		repointEdge(g, id, remove, keep)
	}
	g.RemoveNode(remove)
}

// doubletMerge collapses nodes sitting at (near) identical coordinates,
// regardless of station status, before station-tolerance clustering runs.
// This mirrors the doublet-stop cleanup supplementing §4.B: raw feeds
// frequently carry duplicate stops or shape points at the same location
// under different IDs.
func doubletMerge(g *graph.LineGraph, tol float64) {
	const epsilon = 1e-9
	if tol < epsilon {
		tol = epsilon
	}
	groupAndMerge(g, tol, func(n *graph.Node) bool { return true })
}

// clusterStations unions station-bound nodes within ClusterTolerance of one
// another into a single node (§4.B operation 4).
func clusterStations(g *graph.LineGraph, opts Options) {
	groupAndMerge(g, opts.ClusterTolerance, func(n *graph.Node) bool { return n.IsStation() })
}

// groupAndMerge unions every pair of eligible nodes within tol of each
// other and merges each resulting group into its lowest-ID member, so the
// outcome is independent of map iteration order.
func groupAndMerge(g *graph.LineGraph, tol float64, eligible func(*graph.Node) bool) {
	ids := g.SortedNodeIDs()
	var candidates []graph.NodeID
	for _, id := range ids {
		n, ok := g.Node(id)
		if ok && eligible(n) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) < 2 {
		return
	}

	uf := newUnionFind(candidates)
	for i := 0; i < len(candidates); i++ {
		ni, _ := g.Node(candidates[i])
		for j := i + 1; j < len(candidates); j++ {
			nj, _ := g.Node(candidates[j])
			if dist(ni.Pos, nj.Pos) <= tol {
				uf.union(candidates[i], candidates[j])
			}
		}
	}

	groups := make(map[graph.NodeID][]graph.NodeID)
	for _, id := range candidates {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}

	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		slices.Sort(members)
		keep := members[0]
		for _, other := range members[1:] {
			mergeNodeInto(g, keep, other)
		}
	}
}

package optgraph

import (
	"fmt"
	"slices"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
)

// isHub reports whether a node survives contraction: station-bound nodes
// and anything whose degree is not exactly 2 are left uncontracted.
func isHub(n *graph.Node) bool {
	return n.IsStation() || n.Degree() != 2
}

// Contract builds the optimization graph for g (§4.C): every maximal chain
// of non-station, degree-2 nodes collapses into a single OptEdge between
// the two OptNodes (hubs) bounding it. A line graph consisting entirely of
// degree-2 non-station nodes forming a closed ring (no hub at all) is
// handled by promoting its lowest-ID node to a synthetic hub, so the result
// is always well-defined.
func Contract(g *graph.LineGraph) (*OptGraph, error) {
	og := newOptGraph()
	visited := make(map[graph.EdgeID]bool)

	var hubs []graph.NodeID
	for _, nid := range g.SortedNodeIDs() {
		n, ok := g.Node(nid)
		if ok && isHub(n) {
			og.addNode(nid)
			hubs = append(hubs, nid)
		}
	}

	for _, h := range hubs {
		if err := contractFrom(g, og, h, visited); err != nil {
			return nil, err
		}
	}

	// Any edges left unvisited belong to hub-free rings; promote the
	// lowest-ID node of each remaining component to a synthetic hub.
	for _, eid := range g.SortedEdgeIDs() {
		if visited[eid] {
			continue
		}
		ring := ringComponent(g, eid, visited)
		synth := slices.Min(ring)
		og.addNode(synth)
		if err := contractFrom(g, og, synth, visited); err != nil {
			return nil, err
		}
	}

	return og, nil
}

// contractFrom traces every not-yet-visited edge incident to hub h into a
// chain terminating at another hub, adding one OptEdge per chain.
func contractFrom(g *graph.LineGraph, og *OptGraph, h graph.NodeID, visited map[graph.EdgeID]bool) error {
	n, ok := g.Node(h)
	if !ok {
		return nil
	}
	fromOpt, ok := og.NodeBySource(h)
	if !ok {
		return pipelineerr.New(pipelineerr.CodeInvariantViolated, "hub node %d has no OptNode", h)
	}

	incident := n.Incident()
	slices.Sort(incident)
	for _, eid := range incident {
		if visited[eid] {
			continue
		}
		segs, reversed, end := traceChain(g, h, eid, visited)
		endOpt, ok := og.NodeBySource(end)
		if !ok {
			return pipelineerr.New(pipelineerr.CodeInvariantViolated,
				"chain from node %d terminated at non-hub node %d", h, end)
		}
		bundle, err := consistentBundle(g, segs, reversed)
		if err != nil {
			return err
		}
		og.addEdge(fromOpt.ID, endOpt.ID, segs, reversed, bundle)
	}
	return nil
}

// traceChain follows edges from node `from`, starting with firstEdge,
// through any sequence of degree-2 non-station nodes, stopping as soon as
// it reaches a node already registered as an OptNode (a hub). It returns
// the visited edges in traversal order, a same-length slice recording
// whether each edge's own From/To orientation opposes the traversal
// direction, and the terminating node.
func traceChain(g *graph.LineGraph, from graph.NodeID, firstEdge graph.EdgeID, visited map[graph.EdgeID]bool) ([]graph.EdgeID, []bool, graph.NodeID) {
	var segs []graph.EdgeID
	var reversed []bool

	cur := from
	edgeID := firstEdge
	for {
		e, _ := g.Edge(edgeID)
		visited[edgeID] = true
		segs = append(segs, edgeID)
		reversed = append(reversed, e.From != cur)

		next := e.Other(cur)
		cur = next
		nn, ok := g.Node(cur)
		if !ok || isHub(nn) {
			return segs, reversed, cur
		}

		inc := nn.Incident()
		nextEdge := graph.EdgeID(-1)
		for _, id := range inc {
			if id != edgeID {
				nextEdge = id
				break
			}
		}
		if nextEdge == -1 {
			// Degree-2 invariant broken or a dead end; stop defensively
			// rather than loop.
			return segs, reversed, cur
		}
		edgeID = nextEdge
	}
}

// ringComponent performs a small BFS over not-yet-visited edges to collect
// every node reachable from the endpoints of eid, used only for the
// hub-free ring fallback in Contract.
func ringComponent(g *graph.LineGraph, eid graph.EdgeID, visited map[graph.EdgeID]bool) []graph.NodeID {
	e, _ := g.Edge(eid)
	seen := map[graph.NodeID]bool{e.From: true, e.To: true}
	queue := []graph.NodeID{e.From, e.To}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		node, ok := g.Node(n)
		if !ok {
			continue
		}
		for _, id := range node.Incident() {
			if visited[id] {
				continue
			}
			ne, _ := g.Edge(id)
			other := ne.Other(n)
			if !seen[other] {
				seen[other] = true
				queue = append(queue, other)
			}
		}
	}
	out := make([]graph.NodeID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// consistentBundle requires every segment in a contracted chain to carry
// the same set of lines (direction-normalized to the chain's own
// From→To orientation); topology cleanup (B) is expected to have already
// merged any segments that would disagree. A mismatch is an invariant
// violation, not a recoverable input error, since it indicates B failed to
// fully aggregate a shared chain.
func consistentBundle(g *graph.LineGraph, segs []graph.EdgeID, reversed []bool) ([]graph.LineOccurrence, error) {
	first, _ := g.Edge(segs[0])
	want := normalizeBundle(first.Bundle, reversed[0])

	for i := 1; i < len(segs); i++ {
		seg, _ := g.Edge(segs[i])
		got := normalizeBundle(seg.Bundle, reversed[i])
		if !sameLineSet(want, got) {
			return nil, pipelineerr.New(pipelineerr.CodeInvariantViolated,
				"segment %d in contracted chain carries a different line set than segment %d",
				segs[i], segs[0]).WithEntity(fmt.Sprintf("edge#%d", segs[i]))
		}
	}
	return want, nil
}

func normalizeBundle(bundle []graph.LineOccurrence, reversed bool) []graph.LineOccurrence {
	if !reversed {
		return append([]graph.LineOccurrence{}, bundle...)
	}
	return flipDirections(bundle)
}

func sameLineSet(a, b []graph.LineOccurrence) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[graph.LineID]struct{}, len(a))
	for _, occ := range a {
		seen[occ.Line.ID] = struct{}{}
	}
	for _, occ := range b {
		if _, ok := seen[occ.Line.ID]; !ok {
			return false
		}
	}
	return true
}

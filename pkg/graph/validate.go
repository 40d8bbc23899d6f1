package graph

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
)

// DefaultGeometryTolerance is the default distance (in map units) within
// which an edge's geometry endpoints must match its node positions (§4.A).
const DefaultGeometryTolerance = 1e-6

// Validate checks the invariants of §3 and §8 that the core itself is
// responsible for upholding:
//
//   - every node position is finite,
//   - every station-bound node has a non-empty station name,
//   - every edge's geometry endpoints lie within tol of its node positions,
//   - no edge's bundle contains a duplicate line (enforced on AddEdge, but
//     re-checked here to detect corruption from direct struct mutation).
//
// Adjacency symmetry (§8) is maintained by AddEdge and RemoveEdge, which
// update both endpoints' adjacency sets together with the edge arena;
// Validate does not re-check it.
func (g *LineGraph) Validate(tol float64) error {
	if tol <= 0 {
		tol = DefaultGeometryTolerance
	}
	for _, n := range g.nodes {
		if !finitePoint(n.Pos) {
			return pipelineerr.New(pipelineerr.CodeInvariantViolated, "node position is not finite").WithEntity(n.ExtID)
		}
		if n.IsStation() && n.Station.Name == "" {
			return pipelineerr.New(pipelineerr.CodeInvariantViolated, "station-bound node has empty name").WithEntity(n.ExtID)
		}
	}
	for _, e := range g.edges {
		if err := g.validateEdgeGeometry(e, tol); err != nil {
			return err
		}
		seen := make(map[LineID]struct{}, len(e.Bundle))
		for _, occ := range e.Bundle {
			if _, dup := seen[occ.Line.ID]; dup {
				return pipelineerr.New(pipelineerr.CodeInvariantViolated, "duplicate line %s in bundle", occ.Line.ID).WithEntity(edgeLabel(e))
			}
			seen[occ.Line.ID] = struct{}{}
		}
	}
	return nil
}

func (g *LineGraph) validateEdgeGeometry(e *Edge, tol float64) error {
	from, ok := g.nodes[e.From]
	if !ok {
		return pipelineerr.New(pipelineerr.CodeDanglingReference, "edge references unknown from-node").WithEntity(edgeLabel(e))
	}
	to, ok := g.nodes[e.To]
	if !ok {
		return pipelineerr.New(pipelineerr.CodeDanglingReference, "edge references unknown to-node").WithEntity(edgeLabel(e))
	}
	if len(e.Geometry) < 2 {
		return pipelineerr.New(pipelineerr.CodeGeometryMismatch, "edge geometry has fewer than two points").WithEntity(edgeLabel(e))
	}
	if dist(e.Geometry[0], from.Pos) > tol {
		return pipelineerr.New(pipelineerr.CodeGeometryMismatch, "edge start does not match from-node position").WithEntity(edgeLabel(e))
	}
	if dist(e.Geometry[len(e.Geometry)-1], to.Pos) > tol {
		return pipelineerr.New(pipelineerr.CodeGeometryMismatch, "edge end does not match to-node position").WithEntity(edgeLabel(e))
	}
	return nil
}

func finitePoint(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}

func dist(a, b orb.Point) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return math.Hypot(dx, dy)
}

func edgeLabel(e *Edge) string {
	return fmt.Sprintf("edge#%d", e.ID)
}

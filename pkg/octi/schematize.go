package octi

import (
	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/octi/gridgraph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
)

// Result is what a successful Schematize run produced, kept around for
// diagnostics (a --grid-preview dot export in particular).
type Result struct {
	Grid      *gridgraph.GridGraph
	Placement Placement
	Width     int
	Height    int
}

// Schematize places every node of og on opts' grid and routes every
// edge, mutating g's node positions and edge geometries in place. If
// routing fails and opts.GrowGridOnFailure is set, it doubles Width and
// Height and retries the whole placement+routing pass from scratch, for
// at most opts.MaxGrowAttempts attempts in all; otherwise the first LayoutInfeasible
// failure is returned directly (the "abort" recovery mode).
func Schematize(g *graph.LineGraph, og *optgraph.OptGraph, opts Options) (*Result, error) {
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = estimateGridSize(g, opts)
	}

	attempts := 1
	if opts.GrowGridOnFailure {
		attempts = opts.MaxGrowAttempts
		if attempts <= 0 {
			attempts = 1
		}
	}

	newTopology := opts.Topology
	if newTopology == nil {
		newTopology = func(w, h int) gridgraph.Topology { return gridgraph.NewOctilinear(w, h) }
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		topo := newTopology(width, height)
		gg := gridgraph.NewGridGraph(topo, opts.Costs, allCells(width, height))
		runOpts := opts
		runOpts.Width, runOpts.Height = width, height

		placement, err := PlaceStations(g, og, gg, runOpts)
		if err == nil {
			if err := RouteEdges(g, og, gg, placement, runOpts); err == nil {
				return &Result{Grid: gg, Placement: placement, Width: width, Height: height}, nil
			} else {
				lastErr = err
			}
		} else {
			lastErr = err
		}

		if !opts.GrowGridOnFailure {
			break
		}
		width *= 2
		height *= 2
	}

	if lastErr == nil {
		lastErr = pipelineerr.New(pipelineerr.CodeInfeasible, "LayoutInfeasible: schematization did not converge")
	}
	return nil, lastErr
}

func allCells(width, height int) []gridgraph.CellCoord {
	cells := make([]gridgraph.CellCoord, 0, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			cells = append(cells, gridgraph.CellCoord{X: x, Y: y})
		}
	}
	return cells
}

// estimateGridSize sizes a grid to cover every node's position with one
// extra cell beyond the largest X and Y cell index, using opts.CellSize
// and opts.Origin. No slack is added below cell 0.
func estimateGridSize(g *graph.LineGraph, opts Options) (int, int) {
	var maxX, maxY int
	for _, n := range g.Nodes() {
		c := worldToCell(opts.Origin, opts.CellSize, n.Pos)
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return maxX + 2, maxY + 2
}

// BoundingOrigin returns a (Origin, suggested CellSize) pair covering
// every node in g with roughly `targetCells` cells along the longer
// axis — a convenience for callers that haven't picked Options.Origin/
// CellSize by hand.
func BoundingOrigin(g *graph.LineGraph, targetCells int) (orb.Point, float64) {
	if targetCells <= 0 {
		targetCells = 64
	}
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return orb.Point{0, 0}, 1
	}
	minX, minY := nodes[0].Pos[0], nodes[0].Pos[1]
	maxX, maxY := minX, minY
	for _, n := range nodes {
		if n.Pos[0] < minX {
			minX = n.Pos[0]
		}
		if n.Pos[0] > maxX {
			maxX = n.Pos[0]
		}
		if n.Pos[1] < minY {
			minY = n.Pos[1]
		}
		if n.Pos[1] > maxY {
			maxY = n.Pos[1]
		}
	}
	span := maxX - minX
	if dy := maxY - minY; dy > span {
		span = dy
	}
	if span <= 0 {
		span = 1
	}
	return orb.Point{minX, minY}, span / float64(targetCells)
}

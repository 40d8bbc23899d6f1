package gridgraph

import "math"

// Topology is the capability set every grid-shaped routing surface must
// provide: where a port leads, how many ports a centre has, and an
// admissible distance estimate between two centres for A* search.
// Octilinear and Orthoradial are the two variants the engine ships;
// every algorithm in this package and in pkg/octi is written against
// this interface rather than against either concrete grid.
type Topology interface {
	// Neighbour returns the centre and incoming port direction a
	// traversal edge leaving c's port d arrives at, or ok=false if that
	// traversal would leave the grid's bounds.
	Neighbour(c CellCoord, d PortDir) (next CellCoord, arrivalPort PortDir, ok bool)

	// PortCount returns the number of ports per centre (always 8 for the
	// variants in this package, but kept as a method so a future
	// topology with a different port count remains pluggable).
	PortCount() int

	// Heuristic returns an admissible lower-bound cost estimate from a
	// to b, for use as the A* heuristic during edge routing.
	Heuristic(a, b CellCoord) float64
}

// Octilinear is a rectangular grid: X/Y are plain Cartesian cell
// indices bounded by [0, Width) x [0, Height).
type Octilinear struct {
	Width, Height int
	Dir           DirectionCost
	Bend          BendCost
}

// NewOctilinear returns an Octilinear topology of the given size using
// DefaultDirectionCost/DefaultBendCost.
func NewOctilinear(width, height int) *Octilinear {
	return &Octilinear{Width: width, Height: height, Dir: DefaultDirectionCost, Bend: DefaultBendCost}
}

func (o *Octilinear) PortCount() int { return numPorts }

func (o *Octilinear) inBounds(c CellCoord) bool {
	return c.X >= 0 && c.X < o.Width && c.Y >= 0 && c.Y < o.Height
}

func (o *Octilinear) Neighbour(c CellCoord, d PortDir) (CellCoord, PortDir, bool) {
	dx, dy := d.Offset()
	next := c.Add(dx, dy)
	if !o.inBounds(next) {
		return CellCoord{}, 0, false
	}
	return next, d.Opposite(), true
}

// Heuristic implements the spec's admissible octilinear lower bound:
// hops = max(|dx|,|dy|) diagonal-first moves, each costed at the
// cheapest available direction, plus a per-hop correction so the bound
// never overestimates the cost of (hops-1) interior turns from the
// sharpest to the gentlest bend.
func (o *Octilinear) Heuristic(a, b CellCoord) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	hops := dx
	if dy > hops {
		hops = dy
	}
	if hops == 0 {
		return 0
	}
	minPen := o.Dir.Vertical
	if o.Dir.Horizontal < minPen {
		minPen = o.Dir.Horizontal
	}
	if o.Dir.Diagonal < minPen {
		minPen = o.Dir.Diagonal
	}
	return float64(hops)*minPen + float64(hops-1)*(o.Bend.P45-o.Bend.P135)
}

// Orthoradial lays cells out on Rings concentric circles of Sectors
// angular slots each; X is the sector (periodic modulo Sectors), Y is
// the ring (bounded, non-periodic).
type Orthoradial struct {
	Sectors, Rings int
	Dir            DirectionCost
	Bend           BendCost
}

// NewOrthoradial returns an Orthoradial topology using
// DefaultDirectionCost/DefaultBendCost.
func NewOrthoradial(sectors, rings int) *Orthoradial {
	return &Orthoradial{Sectors: sectors, Rings: rings, Dir: DefaultDirectionCost, Bend: DefaultBendCost}
}

func (o *Orthoradial) PortCount() int { return numPorts }

func (o *Orthoradial) wrapSector(x int) int {
	x %= o.Sectors
	if x < 0 {
		x += o.Sectors
	}
	return x
}

func (o *Orthoradial) Neighbour(c CellCoord, d PortDir) (CellCoord, PortDir, bool) {
	dx, dy := d.Offset()
	ny := c.Y + dy
	if ny < 0 || ny >= o.Rings {
		return CellCoord{}, 0, false
	}
	nx := o.wrapSector(c.X + dx)
	return CellCoord{X: nx, Y: ny}, d.Opposite(), true
}

// Heuristic treats the sector axis as periodic: the angular distance
// wraps around Sectors rather than growing unbounded.
func (o *Orthoradial) Heuristic(a, b CellCoord) float64 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	if wrapped := o.Sectors - dx; wrapped < dx {
		dx = wrapped
	}
	dy := b.Y - a.Y
	if dy < 0 {
		dy = -dy
	}
	hops := dx
	if dy > hops {
		hops = dy
	}
	if hops == 0 {
		return 0
	}
	minPen := math.Min(o.Dir.Vertical, math.Min(o.Dir.Horizontal, o.Dir.Diagonal))
	return float64(hops)*minPen + float64(hops-1)*(o.Bend.P45-o.Bend.P135)
}

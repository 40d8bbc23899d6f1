package octi

import (
	"github.com/paulmach/orb"

	"github.com/transitdraw/transitmap/pkg/octi/gridgraph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
)

// Options configures a Schematize run.
type Options struct {
	// CellSize is the world-unit width/height of one grid cell.
	CellSize float64

	// Origin is the world position of grid cell (0, 0)'s lower-left
	// corner, typically the bounding box minimum of the input network.
	Origin orb.Point

	// Width and Height bound the initial grid, in cells.
	Width, Height int

	// MaxDis is the maximum number of cells, measured in Chebyshev
	// distance from a node's ideal position, that the placement search
	// will consider before giving up on that node.
	MaxDis int

	// SpacingWeight, TopologyWeight, and GeoWeight scale the three
	// per-route penalties described by the routing stage.
	SpacingWeight, TopologyWeight, GeoWeight float64

	// GrowGridOnFailure selects the LayoutInfeasible recovery mode: when
	// true, Schematize doubles Width and Height and retries from
	// scratch, making at most MaxGrowAttempts attempts in all (the first
	// included), instead of failing on the first unroutable edge.
	GrowGridOnFailure bool
	MaxGrowAttempts   int

	Costs gridgraph.CostModel

	// Topology builds the grid kind to place and route on, given the
	// grid's current width/height in cells. Defaults to
	// gridgraph.NewOctilinear; set to a closure over
	// gridgraph.NewOrthoradial to schematize onto a radial grid instead.
	Topology func(width, height int) gridgraph.Topology

	// Pinned forces specific OptNodes onto specific cells before the
	// nearest-candidate search runs, so a caller (the inspect command's
	// interactive picker, in particular) can manually relocate a
	// station that PlaceStations could not place on its own.
	Pinned map[optgraph.OptNodeID]gridgraph.CellCoord
}

// DefaultOptions returns Options tuned for a modest city-sized network;
// CellSize and Width/Height still need to be set from the input's
// bounding box.
func DefaultOptions() Options {
	return Options{
		MaxDis:          6,
		SpacingWeight:   1.0,
		TopologyWeight:  4.0,
		GeoWeight:       0.1,
		MaxGrowAttempts: 3,
		Costs:           gridgraph.DefaultCostModel,
		Topology: func(width, height int) gridgraph.Topology {
			return gridgraph.NewOctilinear(width, height)
		},
	}
}

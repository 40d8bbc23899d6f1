// Package pipeline provides the core schematization pipeline: the
// parse → topology → contract → order → schematize stages that CLI,
// HTTP API, and any future worker component all share, so caching and
// stage sequencing live in exactly one place.
//
// # Architecture
//
// The pipeline runs five stages in order:
//
//  1. Parse: load a GeoJSON exchange document into a LineGraph (§A)
//  2. Topology: aggregate/split/smooth/cluster the raw network (§B)
//  3. Contract: collapse the topology into an optimization graph (§C)
//  4. Order: assign each bundle's line slot order (§D)
//  5. Schematize: place stations and route edges on an octilinear grid (§E)
//
// Each stage can be run independently or as part of the complete
// pipeline via Runner.Execute.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/loom"
	"github.com/transitdraw/transitmap/pkg/octi"
	"github.com/transitdraw/transitmap/pkg/optgraph"
	"github.com/transitdraw/transitmap/pkg/topo"
)

// Default values shared by every entry point so CLI, API, and tests
// never drift out of sync.
const (
	// DefaultAggrTolerance mirrors topo.DefaultOptions's MaxAggrDist.
	DefaultAggrTolerance = 150.0

	// DefaultQuality is the default ordering strategy.
	DefaultQuality = loom.QualityBalanced

	// DefaultCellSize is the default octilinear grid cell size, in the
	// same map units as the input network's geometry.
	DefaultCellSize = 200.0
)

// Options contains all configuration for a pipeline run.
type Options struct {
	// ExchangeTolerance is the node/geometry endpoint tolerance used
	// when parsing the GeoJSON exchange document (§A).
	ExchangeTolerance float64

	// Topology controls the §B aggregation/smoothing/clustering pass.
	Topology topo.Options

	// Quality selects the line-ordering strategy (§D): Fast, Balanced,
	// or Optimal.
	Quality loom.Quality

	// Schematize controls grid placement and routing (§E).
	Schematize octi.Options

	// Refresh forces every cacheable stage to recompute instead of
	// reading a cached result.
	Refresh bool

	// Logger receives structured progress logs; defaults to a discard
	// logger if nil.
	Logger *log.Logger

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Network is the parsed-and-topologized LineGraph (after §A and §B,
	// with final station positions and edge geometry written by §E).
	Network *graph.LineGraph

	// NetworkHash is the content hash of the parsed network, used as
	// the cache key root for every downstream stage.
	NetworkHash string

	// Opt is the contracted optimization graph (§C), carrying the final
	// line-bundle ordering (§D) in its OptEdge.Bundle[*].Order fields.
	Opt *optgraph.OptGraph

	// Layout is the grid placement and routing result (§E).
	Layout *octi.Result

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics, one field pair per
// stage.
type Stats struct {
	NodeCount, EdgeCount int

	ParseTime      time.Duration
	TopologyTime   time.Duration
	ContractTime   time.Duration
	OrderTime      time.Duration
	SchematizeTime time.Duration
}

// CacheInfo tracks cache hits for each cacheable pipeline stage. The
// Runner caches only Parse (raw network bytes); every other stage always
// recomputes, and SchematizeHit is never set by the Runner — see
// DESIGN.md.
type CacheInfo struct {
	ParseHit      bool
	SchematizeHit bool
}

// ValidateAndSetDefaults applies defaults to every stage's options. It
// is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ExchangeTolerance == 0 {
		o.ExchangeTolerance = 1e-3
	}
	if o.Topology == (topo.Options{}) {
		o.Topology = topo.DefaultOptions()
	}
	if o.Schematize.CellSize == 0 {
		o.Schematize = octi.DefaultOptions()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

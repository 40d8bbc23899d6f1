package topo

import (
	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
)

// Build runs the topology builder in place over g, mutating its edges and
// nodes until every near-duplicate and partially-overlapping segment has
// been resolved into a clean planar topology with clustered stations
// (§4.B). Callers should Validate the graph afterwards if they need the
// geometry-consistency guarantee re-checked.
func Build(g *graph.LineGraph, opts Options) error {
	if opts.MaxAggrDist <= 0 {
		return pipelineerr.New(pipelineerr.CodeInvalidConfig, "max_aggr_dist must be positive")
	}
	if opts.OverlapFraction <= 0 || opts.OverlapFraction > 1 {
		return pipelineerr.New(pipelineerr.CodeInvalidConfig, "overlap_fraction must be in (0, 1]")
	}
	if opts.ClusterTolerance < 0 {
		return pipelineerr.New(pipelineerr.CodeInvalidConfig, "cluster_tolerance must be non-negative")
	}

	aggregate(g, opts)
	splitPartialOverlaps(g, opts)
	aggregate(g, opts)
	smooth(g, opts)
	doubletMerge(g, opts.ClusterTolerance)
	clusterStations(g, opts)
	return nil
}

// smooth applies one round of Chaikin corner-cutting to every edge whose
// geometry has an interior vertex to cut (§4.B operation 3).
func smooth(g *graph.LineGraph, opts Options) {
	cut := smoothToCut(opts.Smooth)
	if cut <= 0 {
		return
	}
	for _, e := range g.Edges() {
		if len(e.Geometry) >= 3 {
			e.Geometry = chaikin(e.Geometry, cut)
		}
	}
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/transitdraw/transitmap/pkg/cache"
	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/graph/geojson"
	"github.com/transitdraw/transitmap/pkg/loom"
	"github.com/transitdraw/transitmap/pkg/observability"
	"github.com/transitdraw/transitmap/pkg/octi"
	"github.com/transitdraw/transitmap/pkg/optgraph"
	"github.com/transitdraw/transitmap/pkg/topo"
)

// Runner encapsulates pipeline execution with caching. Both CLI and API
// use this to avoid duplicating caching logic.
//
// Runner is stateless except for its cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different Options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer. If keyer
// is nil, a DefaultKeyer is used. If c is nil, a NullCache is used
// (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete parse → topology → contract → order →
// schematize pipeline with caching, reading src as a GeoJSON exchange
// document.
func (r *Runner) Execute(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read exchange document: %w", err)
	}

	// Stage A: Parse
	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, "geojson", "")
	g, parseHit, err := r.parseWithCacheInfo(ctx, raw, opts)
	result.Stats.ParseTime = time.Since(parseStart)
	observability.Pipeline().OnParseComplete(ctx, "geojson", "", nodeCountOf(g), result.Stats.ParseTime, err)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Network = g
	result.NetworkHash = cache.Hash(raw)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.ParseHit = parseHit

	r.Logger.Info("parsed network", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "duration", result.Stats.ParseTime)

	// Stage B: Topology
	topoStart := time.Now()
	observability.Pipeline().OnTopologyStart(ctx, g.NodeCount(), g.EdgeCount())
	err = topo.Build(g, opts.Topology)
	result.Stats.TopologyTime = time.Since(topoStart)
	observability.Pipeline().OnTopologyComplete(ctx, g.NodeCount(), g.EdgeCount(), result.Stats.TopologyTime, err)
	if err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}
	r.Logger.Info("built topology", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "duration", result.Stats.TopologyTime)

	// Stage C: Contract
	contractStart := time.Now()
	og, err := optgraph.Contract(g)
	result.Stats.ContractTime = time.Since(contractStart)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	result.Opt = og
	r.Logger.Info("contracted optimization graph", "nodes", og.NodeCount(), "edges", og.EdgeCount(), "duration", result.Stats.ContractTime)

	// Stage D: Order
	orderStart := time.Now()
	observability.Pipeline().OnOrderStart(ctx, qualityName(opts.Quality), og.EdgeCount())
	orderer := loom.ForQuality(opts.Quality)
	err = orderer.OrderLinesContext(ctx, g, og)
	result.Stats.OrderTime = time.Since(orderStart)
	score := loom.NewDefaultScorer().Score(og).Weighted(loom.DefaultWeights)
	observability.Pipeline().OnOrderComplete(ctx, qualityName(opts.Quality), score, result.Stats.OrderTime, err)
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	r.Logger.Info("ordered line bundles", "score", score, "duration", result.Stats.OrderTime)

	// Stage E: Schematize
	schemStart := time.Now()
	observability.Pipeline().OnSchematizeStart(ctx, opts.Schematize.Width, opts.Schematize.Height)
	layout, err := octi.Schematize(g, og, opts.Schematize)
	result.Stats.SchematizeTime = time.Since(schemStart)
	var width, height int
	if layout != nil {
		width, height = layout.Width, layout.Height
	}
	observability.Pipeline().OnSchematizeComplete(ctx, width, height, result.Stats.SchematizeTime, err)
	if err != nil {
		return nil, fmt.Errorf("schematize: %w", err)
	}
	result.Layout = layout
	r.Logger.Info("schematized layout", "width", width, "height", height, "duration", result.Stats.SchematizeTime)

	return result, nil
}

// parseWithCacheInfo loads a LineGraph from raw GeoJSON bytes, using
// raw's content hash as the cache key so an identical source document
// never reparses.
func (r *Runner) parseWithCacheInfo(ctx context.Context, raw []byte, opts Options) (*graph.LineGraph, bool, error) {
	cacheKey := r.Keyer.HTTPKey("network:", cache.Hash(raw))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := geojson.Load(bytes.NewReader(data), opts.ExchangeTolerance); err == nil {
				return g, true, nil
			}
		}
	}

	g, err := geojson.Load(bytes.NewReader(raw), opts.ExchangeTolerance)
	if err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		_ = r.Cache.Set(ctx, cacheKey, raw, 24*time.Hour)
	}
	return g, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func nodeCountOf(g *graph.LineGraph) int {
	if g == nil {
		return 0
	}
	return g.NodeCount()
}

func qualityName(q loom.Quality) string {
	switch q {
	case loom.QualityFast:
		return "fast"
	case loom.QualityOptimal:
		return "optimal"
	default:
		return "balanced"
	}
}

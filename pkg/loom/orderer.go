package loom

import (
	"context"
	"time"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
)

// Orderer assigns a slot order to every edge bundle in og, mutating it
// in place (via optgraph.WriteBundle) and, through that, the underlying
// line graph g.
type Orderer interface {
	OrderLines(g *graph.LineGraph, og *optgraph.OptGraph) error
}

// ContextOrderer is an Orderer that can be bounded by a deadline or
// cancellation, for strategies whose running time depends on network
// size (Exact, in particular).
type ContextOrderer interface {
	Orderer
	OrderLinesContext(ctx context.Context, g *graph.LineGraph, og *optgraph.OptGraph) error
}

// Quality selects a default timeout/thoroughness tradeoff for callers
// that don't want to pick a Timeout or Passes count by hand.
type Quality int

const (
	QualityFast Quality = iota
	QualityBalanced
	QualityOptimal
)

// Default per-network-component timeouts for the Exact strategy, keyed
// by Quality. Fast favours the Heuristic strategy entirely; Balanced and
// Optimal bound how long Exact may spend per component before it must
// return its best incumbent.
const (
	DefaultTimeoutFast     = 50 * time.Millisecond
	DefaultTimeoutBalanced = 2 * time.Second
	DefaultTimeoutOptimal  = 30 * time.Second
)

// ForQuality returns the Orderer this package recommends for q.
func ForQuality(q Quality) ContextOrderer {
	switch q {
	case QualityOptimal:
		return &Exact{Scorer: NewDefaultScorer(), Timeout: DefaultTimeoutOptimal, Rounds: 6}
	case QualityBalanced:
		return &Exact{Scorer: NewDefaultScorer(), Timeout: DefaultTimeoutBalanced, Rounds: 3}
	default:
		return &Heuristic{Scorer: NewDefaultScorer(), Passes: 8}
	}
}

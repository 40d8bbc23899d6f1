// Package loom assigns a left-to-right slot order to the lines running
// along each edge of a contracted optimization graph (pkg/optgraph), so
// that when the schematization stage draws parallel line bundles, the
// number of track crossings and mid-corridor splits is minimized.
//
// Two strategies are provided: Heuristic, a fast local-search pass
// suitable for large networks or tight deadlines, and Exact, a
// branch-and-bound / PQ-tree-backed search that finds a provably
// crossing-minimal order for each bundle when time allows. Both
// implement Orderer and ContextOrderer and share a Scorer for
// evaluating candidate orders.
package loom

// Package topo implements the topology builder (§4.B): it takes a raw line
// graph with near-duplicate, parallel and partially-overlapping edges and
// produces a planar, overlap-free line graph with clustered stations.
//
// Build runs the four operations of §4.B in order: segment aggregation,
// partial-overlap splitting, Chaikin smoothing, and station clustering.
// Every operation is deterministic given a fixed Options.Seed, matching
// the greedy pairwise merge order fallback required for ambiguous overlaps.
package topo

// Package octi is the schematization engine: given an ordered
// optimization graph (pkg/optgraph, with bundles ordered by pkg/loom),
// it places every node on a distinct vertex of an octilinear routing
// grid (pkg/octi/gridgraph) and routes every edge as a shortest path
// across that grid, then rewrites the source line graph's node
// positions and edge geometries to match. Routing that cannot complete
// within the grid's current bounds surfaces LayoutInfeasible; callers
// choose whether to grow the grid and retry or abort, via Options.
package octi

// Package gridgraph builds the octilinear (and orthoradial) routing
// lattice the schematization engine (pkg/octi) places stations on and
// routes edges across. A grid centre has eight ports — NE, E, SE, S, SW,
// W, NW, N — connected to the centre by zero-cost sink edges, to the
// matching port of each 8-neighbour centre by direction-costed
// traversal edges, and to every other port of the same centre by
// bend-costed edges. All routing algorithms are parameterised over the
// Topology interface so the same Dijkstra/A* code drives both grid
// variants.
package gridgraph

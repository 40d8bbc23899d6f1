// Package optgraph implements the optimization graph (§4.C): a contracted
// view of a topology-cleaned line graph where every maximal chain of
// non-station, degree-2 nodes collapses into a single OptEdge. Contracting
// these chains shrinks the problem the line-ordering optimizer (D) has to
// search without losing any information needed to write results back onto
// the original line graph.
package optgraph

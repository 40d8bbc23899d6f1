package loom

import (
	"context"

	"github.com/transitdraw/transitmap/pkg/graph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
)

// Heuristic orders every edge bundle with repeated adjacent-swap local
// search: it tries exchanging each neighbouring pair of lines in a
// bundle and keeps the swap whenever it lowers that edge's weighted
// EdgeCost, sweeping the whole graph until a pass makes no improvement
// or Passes is exhausted. It never enforces the zero-split constraint
// the Exact strategy can, but it scores splits the same way, so it
// still tends to keep destination groups together.
type Heuristic struct {
	Scorer  Scorer
	Passes  int
	Weights Weights
}

func (h *Heuristic) weights() Weights {
	if h.Weights == (Weights{}) {
		return DefaultWeights
	}
	return h.Weights
}

func (h *Heuristic) scorer() Scorer {
	if h.Scorer == nil {
		return NewDefaultScorer()
	}
	return h.Scorer
}

func (h *Heuristic) OrderLines(g *graph.LineGraph, og *optgraph.OptGraph) error {
	return h.OrderLinesContext(context.Background(), g, og)
}

func (h *Heuristic) OrderLinesContext(ctx context.Context, g *graph.LineGraph, og *optgraph.OptGraph) error {
	passes := h.Passes
	if passes <= 0 {
		passes = 8
	}
	scorer := h.scorer()
	w := h.weights()

	ids := og.SortedEdgeIDs()
	for pass := 0; pass < passes; pass++ {
		select {
		case <-ctx.Done():
			return finalizeBundles(g, og, ids)
		default:
		}

		improved := false
		for _, id := range ids {
			e, ok := og.Edge(id)
			if !ok || len(e.Bundle) < 2 {
				continue
			}
			for i := 0; i+1 < len(e.Bundle); i++ {
				before := scorer.EdgeCost(og, id, w)
				e.Bundle[i], e.Bundle[i+1] = e.Bundle[i+1], e.Bundle[i]
				after := scorer.EdgeCost(og, id, w)
				if after < before {
					improved = true
				} else {
					e.Bundle[i], e.Bundle[i+1] = e.Bundle[i+1], e.Bundle[i]
				}
			}
		}
		if !improved {
			break
		}
	}

	return finalizeBundles(g, og, ids)
}

// finalizeBundles stamps each occurrence's Order field with its final
// slot index and pushes the bundle back onto the underlying line graph.
func finalizeBundles(g *graph.LineGraph, og *optgraph.OptGraph, ids []optgraph.OptEdgeID) error {
	for _, id := range ids {
		e, ok := og.Edge(id)
		if !ok {
			continue
		}
		bundle := make([]graph.LineOccurrence, len(e.Bundle))
		for i, occ := range e.Bundle {
			occ.Order = i
			bundle[i] = occ
		}
		if err := optgraph.WriteBundle(g, og, id, bundle); err != nil {
			return err
		}
	}
	return nil
}

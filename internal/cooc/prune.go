package cooc

import (
	"cocon/cooc/internal/config"
	"cocon/cooc/internal/graph"
)

// Pruner extracts the temporally admissible neighborhood of a record.
type Pruner struct {
	snap    *graph.Snapshot
	hops    int
	mode    config.TemporalMode
	reprune bool
}

// NewPruner returns a pruner over snap.
func NewPruner(snap *graph.Snapshot, hops int, mode config.TemporalMode, reprune bool) *Pruner {
	return &Pruner{snap: snap, hops: hops, mode: mode, reprune: reprune}
}

// Known reports whether a paper dated (year, month) predates anchor.
func Known(mode config.TemporalMode, year, month int, anchor Anchor) bool {
	if mode == config.TemporalLexicographic {
		return year < anchor.Year || (year == anchor.Year && month < anchor.Month)
	}
	return year < anchor.Year && month < anchor.Month
}

// Prune expands the record's endpoints by the configured number of hops,
// drops every paper that is undated or not Known at the record's anchor,
// and returns the induced subgraph. A record carrying the undated sentinel
// anchor keeps no papers. With reprune set the expansion runs a
// second time on the pruned graph, which removes nodes that were only
// reachable through a dropped paper.
func (p *Pruner) Prune(r *Record) *graph.Snapshot {
	seeds := r.Endpoints()
	candidates := graph.KHop(p.snap, seeds, p.hops)

	keep := make(map[string]bool, len(candidates))
	for id := range candidates {
		n, ok := p.snap.Node(id)
		if !ok {
			continue
		}
		if !n.IsPaper() {
			keep[id] = true
			continue
		}
		year, month, dated := n.Date()
		if dated && !r.Anchor.Undated() && Known(p.mode, year, month, r.Anchor) {
			keep[id] = true
		}
	}

	sub := p.snap.Induced(keep)
	if !p.reprune {
		return sub
	}
	return sub.Induced(graph.KHop(sub, seeds, p.hops))
}

// Degenerate reports whether a pruned neighborhood cannot serve as a sample.
func Degenerate(sub *graph.Snapshot, r *Record) bool {
	if len(sub.Nodes) == 0 {
		return true
	}
	_, ok1 := sub.Node(r.Key.E1)
	_, ok2 := sub.Node(r.Key.E2)
	return !ok1 || !ok2
}

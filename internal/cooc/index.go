package cooc

import (
	"sort"

	"cocon/cooc/internal/graph"
)

// IndexStats describes one index build.
type IndexStats struct {
	PapersScanned  int  `json:"papers_scanned"`
	UndatedPapers  int  `json:"undated_papers"`
	GhostNeighbors int  `json:"ghost_neighbors"`
	Capped         bool `json:"capped"`
}

// Index maps canonical pair keys to co-occurrence records.
type Index struct {
	records map[PairKey]*Record
	Stats   IndexStats
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{records: make(map[PairKey]*Record)}
}

// Len is the number of distinct pairs.
func (idx *Index) Len() int { return len(idx.records) }

// Get looks up a pair in either order.
func (idx *Index) Get(a, b string) (*Record, bool) {
	r, ok := idx.records[NewPairKey(a, b)]
	return r, ok
}

// Has reports whether a and b co-occur.
func (idx *Index) Has(a, b string) bool {
	_, ok := idx.records[NewPairKey(a, b)]
	return ok
}

// Records returns all records sorted by key.
func (idx *Index) Records() []*Record {
	out := make([]*Record, 0, len(idx.records))
	for _, r := range idx.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.E1 != out[j].Key.E1 {
			return out[i].Key.E1 < out[j].Key.E1
		}
		return out[i].Key.E2 < out[j].Key.E2
	})
	return out
}

// Add records that entities a and b co-occur in paperID. It returns the
// record, or nil when the pair is not eligible. Insertion order of a and b
// does not matter.
func (idx *Index) Add(a, b *graph.Node, paperID string, date Anchor, dated bool) *Record {
	if a.ID == b.ID || !Eligible(a.Type, b.Type) {
		return nil
	}
	key := NewPairKey(a.ID, b.ID)
	r, ok := idx.records[key]
	if !ok {
		r = NewRecord(a, b)
		idx.records[key] = r
	}
	r.observe(paperID, date, dated)
	return r
}

// BuildIndex scans every paper in ID order and indexes each eligible pair of
// entities linked to it by a used_in_paper edge (either direction). With
// cap > 0, construction stops as soon as the index holds cap pairs; the
// stable iteration order makes the truncation reproducible.
func BuildIndex(snap *graph.Snapshot, cap int) *Index {
	idx := NewIndex()

	for _, paperID := range snap.PaperIDs() {
		paper := snap.Nodes[paperID]
		idx.Stats.PapersScanned++

		year, month, dated := paper.Date()
		if !dated {
			idx.Stats.UndatedPapers++
		}
		date := Anchor{Year: year, Month: month}

		entities := paperEntities(snap, paperID, &idx.Stats)
		for i := 0; i < len(entities); i++ {
			for j := i + 1; j < len(entities); j++ {
				idx.Add(entities[i], entities[j], paperID, date, dated)
				if cap > 0 && idx.Len() >= cap {
					idx.Stats.Capped = true
					return idx
				}
			}
		}
	}
	return idx
}

// paperEntities returns the non-paper nodes attached to paperID through
// used_in_paper edges, sorted by ID.
func paperEntities(snap *graph.Snapshot, paperID string, stats *IndexStats) []*graph.Node {
	seen := make(map[string]bool)
	var out []*graph.Node
	visit := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		n, ok := snap.Node(id)
		if !ok || n.Type == graph.TypeUnknown {
			stats.GhostNeighbors++
			return
		}
		if n.IsPaper() {
			return
		}
		out = append(out, n)
	}
	for _, e := range snap.In(paperID) {
		if e.Type == graph.EdgeUsedInPaper {
			visit(e.Source)
		}
	}
	for _, e := range snap.Out(paperID) {
		if e.Type == graph.EdgeUsedInPaper {
			visit(e.Target)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SharePaper reports whether a and b are both linked to some paper by a
// used_in_paper edge, independent of any index.
func SharePaper(snap *graph.Snapshot, a, b string) bool {
	papers := make(map[string]bool)
	for _, id := range paperNeighbors(snap, a) {
		papers[id] = true
	}
	for _, id := range paperNeighbors(snap, b) {
		if papers[id] {
			return true
		}
	}
	return false
}

func paperNeighbors(snap *graph.Snapshot, id string) []string {
	var out []string
	add := func(other string) {
		if n, ok := snap.Node(other); ok && n.IsPaper() {
			out = append(out, other)
		}
	}
	for _, e := range snap.Out(id) {
		if e.Type == graph.EdgeUsedInPaper {
			add(e.Target)
		}
	}
	for _, e := range snap.In(id) {
		if e.Type == graph.EdgeUsedInPaper {
			add(e.Source)
		}
	}
	return out
}

package cooc

import (
	"sort"

	"cocon/cooc/internal/graph"
)

// Anchor values of a record none of whose papers carry a full date.
const (
	SentinelYear  = 9999
	SentinelMonth = 13
)

// PairKey is the canonical identity of an unordered entity pair: E1 < E2.
type PairKey struct {
	E1, E2 string
}

// NewPairKey orders a and b so that (a, b) and (b, a) yield the same key.
func NewPairKey(a, b string) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{E1: a, E2: b}
}

func (k PairKey) String() string { return k.E1 + "|" + k.E2 }

// Anchor is the (year, month) before which graph content counts as known.
type Anchor struct {
	Year  int
	Month int
}

// Before compares anchors lexicographically.
func (a Anchor) Before(b Anchor) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Month < b.Month
}

// Undated reports whether the anchor is still the sentinel.
func (a Anchor) Undated() bool {
	return a.Year == SentinelYear && a.Month == SentinelMonth
}

// Record is a co-occurrence (or corrupted) pair. Key and Types are its
// identity; Papers and Anchor are accumulators owned by the index builder.
// Use Key, never the pointer, when storing records in maps.
type Record struct {
	Key    PairKey
	Types  [2]graph.NodeType // types of Key.E1, Key.E2
	Papers map[string]struct{}
	Anchor Anchor

	// Negative marks a corrupted record. Its Papers set is empty and
	// Sources names the two disjoint positives it was built from.
	Negative bool
	Sources  [2]PairKey
}

func newRecord(key PairKey, t1, t2 graph.NodeType) *Record {
	return &Record{
		Key:    key,
		Types:  [2]graph.NodeType{t1, t2},
		Papers: make(map[string]struct{}),
		Anchor: Anchor{Year: SentinelYear, Month: SentinelMonth},
	}
}

// NewRecord returns an empty record for the pair (a, b) in canonical order.
func NewRecord(a, b *graph.Node) *Record {
	key := NewPairKey(a.ID, b.ID)
	if key.E1 == a.ID {
		return newRecord(key, a.Type, b.Type)
	}
	return newRecord(key, b.Type, a.Type)
}

// TypeOf returns the node type of one of the record's endpoints.
func (r *Record) TypeOf(id string) graph.NodeType {
	switch id {
	case r.Key.E1:
		return r.Types[0]
	case r.Key.E2:
		return r.Types[1]
	}
	return graph.TypeUnknown
}

// Endpoints returns the pair as a slice, E1 first.
func (r *Record) Endpoints() []string {
	return []string{r.Key.E1, r.Key.E2}
}

// PaperIDs returns the co-occurrence papers sorted.
func (r *Record) PaperIDs() []string {
	ids := make([]string, 0, len(r.Papers))
	for id := range r.Papers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// observe adds a paper to the record, lowering the anchor when the paper is dated.
func (r *Record) observe(paperID string, date Anchor, dated bool) {
	r.Papers[paperID] = struct{}{}
	if dated && date.Before(r.Anchor) {
		r.Anchor = date
	}
}

// disjoint reports whether two records share no co-occurrence paper.
func disjoint(a, b *Record) bool {
	small, large := a.Papers, b.Papers
	if len(small) > len(large) {
		small, large = large, small
	}
	for id := range small {
		if _, ok := large[id]; ok {
			return false
		}
	}
	return true
}

// Eligible is the type-pair policy for co-occurrence records: two distinct
// entity types, neither a paper, and never the (model, method) combination,
// which are two views of the same artifact.
func Eligible(a, b graph.NodeType) bool {
	if a == b || a == graph.TypeUnknown || b == graph.TypeUnknown {
		return false
	}
	if a == graph.TypePaper || b == graph.TypePaper {
		return false
	}
	if (a == graph.TypeModel && b == graph.TypeMethod) || (a == graph.TypeMethod && b == graph.TypeModel) {
		return false
	}
	return true
}

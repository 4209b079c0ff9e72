package cooc

import (
	"math/rand/v2"
	"slices"

	"cocon/cooc/internal/graph"
)

// ClusterDraw is the outcome of sampling one cluster.
type ClusterDraw struct {
	Year      int
	Target    int
	Positives []*Record
	Negatives []*Record
}

// Short reports whether either side came up below the cluster's target.
func (d ClusterDraw) Short() bool {
	return len(d.Positives) < d.Target || len(d.Negatives) < d.Target
}

// NegativeSampler draws positives and corrupted negatives from clusters.
// It consumes rng sequentially, so clusters must be sampled in a fixed
// order for a seed to reproduce a run.
type NegativeSampler struct {
	snap       *graph.Snapshot
	index      *Index
	rng        *rand.Rand
	monthFloor int
}

// NewNegativeSampler returns a sampler over index. snap supplies endpoint
// degrees for month assignment.
func NewNegativeSampler(snap *graph.Snapshot, index *Index, rng *rand.Rand, monthFloor int) *NegativeSampler {
	return &NegativeSampler{snap: snap, index: index, rng: rng, monthFloor: monthFloor}
}

// SampleCluster walks two independent shuffles of the cluster. Every pair
// (r1, r2) with disjoint paper sets contributes r1 and r2 as positives and up
// to two corrupted records, (r1.E1, r2.E2) and (r2.E1, r1.E2). The walk
// stops once both sides reach the target; each side is then cut to the
// target by sampling without replacement.
func (s *NegativeSampler) SampleCluster(c Cluster) ClusterDraw {
	draw := ClusterDraw{Year: c.Year, Target: c.Target}
	if c.Target <= 0 || len(c.Records) < 2 {
		return draw
	}

	first := slices.Clone(c.Records)
	second := slices.Clone(c.Records)
	s.rng.Shuffle(len(first), func(i, j int) { first[i], first[j] = first[j], first[i] })
	s.rng.Shuffle(len(second), func(i, j int) { second[i], second[j] = second[j], second[i] })

	posSeen := make(map[PairKey]bool)
	negSeen := make(map[PairKey]bool)
	var pos, neg []*Record

	full := func() bool { return len(pos) >= c.Target && len(neg) >= c.Target }

outer:
	for _, r1 := range first {
		for _, r2 := range second {
			if full() {
				break outer
			}
			if r1.Key == r2.Key || !disjoint(r1, r2) {
				continue
			}
			for _, r := range []*Record{r1, r2} {
				if !posSeen[r.Key] {
					posSeen[r.Key] = true
					pos = append(pos, r)
				}
			}
			for _, n := range []*Record{
				s.corrupt(c.Year, r1, r2, r1.Key.E1, r2.Key.E2),
				s.corrupt(c.Year, r2, r1, r2.Key.E1, r1.Key.E2),
			} {
				if n == nil || negSeen[n.Key] {
					continue
				}
				negSeen[n.Key] = true
				neg = append(neg, n)
			}
		}
	}

	draw.Positives = s.truncate(pos, c.Target)
	draw.Negatives = s.truncate(neg, c.Target)
	return draw
}

// corrupt builds the negative (x, y) where x is an endpoint of from and y an
// endpoint of to. It returns nil when the pair fails the type policy, is
// degenerate, or co-occurs in the graph. A capped index has not seen every
// paper, so co-occurrence is then checked against the snapshot itself.
func (s *NegativeSampler) corrupt(year int, from, to *Record, x, y string) *Record {
	if x == y {
		return nil
	}
	tx, ty := from.TypeOf(x), to.TypeOf(y)
	if !Eligible(tx, ty) || s.index.Has(x, y) {
		return nil
	}
	if s.index.Stats.Capped && SharePaper(s.snap, x, y) {
		return nil
	}

	key := NewPairKey(x, y)
	var r *Record
	if key.E1 == x {
		r = newRecord(key, tx, ty)
	} else {
		r = newRecord(key, ty, tx)
	}
	r.Negative = true
	r.Sources = [2]PairKey{from.Key, to.Key}

	// The month follows the better-connected endpoint's source record.
	month := to.Anchor.Month
	if s.snap.Degree(x) >= s.snap.Degree(y) {
		month = from.Anchor.Month
	}
	r.Anchor = Anchor{Year: year, Month: max(month, s.monthFloor)}
	return r
}

// truncate keeps n records chosen uniformly, preserving acceptance order.
func (s *NegativeSampler) truncate(recs []*Record, n int) []*Record {
	if len(recs) <= n {
		return recs
	}
	picked := s.rng.Perm(len(recs))[:n]
	slices.Sort(picked)
	out := make([]*Record, n)
	for i, p := range picked {
		out[i] = recs[p]
	}
	return out
}
